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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"nixlang.org/go/internal/adt"
	"nixlang.org/go/internal/parser"
	"nixlang.org/go/nixcontext"
	"nixlang.org/go/pkg/builtins"
)

func newReplCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "read-eval-print loop over Nix expressions",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			resolver, err := flags.resolver()
			if err != nil {
				return err
			}
			return runRepl(c.InOrStdin(), c.OutOrStdout(), flags, resolver)
		},
	}
}

// runRepl reads one line at a time from in, evaluating bare expressions and
// handling a small set of `:` commands (`:load <file>`, `:quit`). Each line
// gets a fresh nixcontext.Context: the evaluator has no notion of a
// persistent top-level environment across inputs (spec.md scopes a whole
// evaluation to one expression), so `:load` just substitutes the loaded
// file's contents for whatever the next bare expression would have been.
func runRepl(in io.Reader, out io.Writer, flags *rootFlags, resolver *envPathResolver) error {
	scanner := bufio.NewScanner(in)
	baseDir := "."

	for {
		fmt.Fprint(out, "nix-eval> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := scanner.Text()

		args, err := shlex.Split(line)
		if err != nil {
			fmt.Fprintln(out, "error:", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		var src []byte
		switch args[0] {
		case ":quit", ":q":
			return nil
		case ":load":
			if len(args) != 2 {
				fmt.Fprintln(out, "usage: :load <file>")
				continue
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				fmt.Fprintln(out, "error:", err)
				continue
			}
			src = data
			baseDir = filepath.Dir(args[1])
		default:
			src = []byte(line)
		}

		if err := evalLine(out, src, baseDir, flags, resolver); err != nil {
			fmt.Fprintln(out, "error:", err)
		}
	}
}

func evalLine(out io.Writer, src []byte, baseDir string, flags *rootFlags, resolver *envPathResolver) error {
	expr, err := parser.ParseExpr(src)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
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
		fmt.Fprintln(out, adt.Pretty(nv))
	} else {
		fmt.Fprintln(out, adt.Repr(nv))
	}
	return nil
}
