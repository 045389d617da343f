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

	"nixlang.org/go/internal/ast"
	"nixlang.org/go/internal/parser"
)

// fileImporter implements adt.Importer by reading and parsing a file off
// disk, relative to a base directory (the directory containing the
// top-level file being evaluated, or the working directory for an -e
// expression).
//
// baseDir is fixed for the lifetime of one evaluation; a nested import's
// own relative imports resolve against it rather than against the nested
// file's directory. Chasing that correctly needs a per-file importer
// instance threaded through import_file, which spec.md's Importer
// collaborator interface (one baseDir per OpContext) doesn't carry.
type fileImporter struct {
	baseDir string
}

func (fi *fileImporter) ImportPath(path string) (ast.Expr, error) {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(fi.baseDir, full)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", full, err)
	}
	e, err := parser.ParseExpr(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", full, err)
	}
	return e, nil
}
