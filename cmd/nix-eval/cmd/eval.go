// Copyright 2024 The Nixeval Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"nixlang.org/go/internal/adt"
	"nixlang.org/go/internal/parser"
	"nixlang.org/go/nixcontext"
	"nixlang.org/go/pkg/builtins"
)

func newEvalCmd(flags *rootFlags) *cobra.Command {
	var exprFlag string

	cmd := &cobra.Command{
		Use:   "eval [file]",
		Short: "evaluate a Nix expression and print its normal form",
		Long: `eval parses a file (or the expression given with -e) and prints its
fully normalized value. Evaluation is skipped if static checking fails.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runEval(c, flags, args, exprFlag)
		},
	}

	cmd.Flags().StringVarP(&exprFlag, "expression", "e", "", "evaluate this expression instead of a file")

	return cmd
}

func runEval(c *cobra.Command, flags *rootFlags, args []string, exprFlag string) error {
	baseDir := "."
	var src []byte
	var err error

	switch {
	case exprFlag != "":
		src = []byte(exprFlag)
	case len(args) == 1:
		src, err = os.ReadFile(args[0])
		if err != nil {
			return err
		}
		baseDir = filepath.Dir(args[0])
	default:
		return fmt.Errorf("either a file argument or -e is required")
	}

	expr, err := parser.ParseExpr(src)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	resolver, err := flags.resolver()
	if err != nil {
		return err
	}

	nc := nixcontext.New(
		nixcontext.WithImporter(&fileImporter{baseDir: baseDir}),
		nixcontext.WithEnvPathResolver(resolver),
		nixcontext.WithBuiltins(builtins.Base()),
	)

	if err := nc.Check(expr); err != nil {
		return fmt.Errorf("static check: %w", err)
	}

	nv, err := nc.Normalize(expr)
	if err != nil {
		return fmt.Errorf("eval: %w", err)
	}

	if flags.debug {
		fmt.Fprintln(c.OutOrStdout(), adt.Pretty(nv))
	} else {
		fmt.Fprintln(c.OutOrStdout(), adt.Repr(nv))
	}
	return nil
}
