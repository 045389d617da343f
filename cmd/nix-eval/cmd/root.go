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

// Package cmd implements the nix-eval command, a small cobra CLI over
// nixcontext with two subcommands: "eval" and "repl".
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Main runs the CLI and returns a process exit code, split out from main()
// so testscript can register it as a subprocess command via
// testscript.RunMain.
func Main() int {
	if err := New().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	debug    bool
	config   string
	nixPaths []string
}

// New builds the root *cobra.Command.
func New() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "nix-eval",
		Short:         "evaluate Nix-language expressions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVar(&flags.debug, "debug", false,
		"print the raw normalized value structure instead of Nix-like syntax")
	root.PersistentFlags().StringVar(&flags.config, "config", "nix-eval.yaml",
		"path to a NIX_PATH config file")
	root.PersistentFlags().StringArrayVar(&flags.nixPaths, "nix-path", nil,
		"NIX_PATH entry as name=path, may be repeated")

	root.AddCommand(newEvalCmd(flags))
	root.AddCommand(newReplCmd(flags))

	return root
}

func (f *rootFlags) resolver() (*envPathResolver, error) {
	cfg, err := loadConfig(f.config)
	if err != nil {
		return nil, err
	}
	if err := mergeFlagEntries(cfg, f.nixPaths); err != nil {
		return nil, err
	}
	return &envPathResolver{entries: cfg.NixPath}, nil
}
