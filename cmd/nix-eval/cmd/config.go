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
	"strings"

	"gopkg.in/yaml.v3"
)

// nixPathConfig is the shape of nix-eval.yaml: a flat table of NIX_PATH
// entry names to resolved filesystem paths, loaded with gopkg.in/yaml.v3.
type nixPathConfig struct {
	NixPath map[string]string `yaml:"nixPath"`
}

// loadConfig reads path as YAML if it exists; a missing file is not an
// error, since --nix-path flags alone are a valid way to configure lookup.
func loadConfig(path string) (*nixPathConfig, error) {
	cfg := &nixPathConfig{NixPath: map[string]string{}}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// mergeFlagEntries folds `name=path` --nix-path flag values into cfg,
// flags taking priority over the file.
func mergeFlagEntries(cfg *nixPathConfig, entries []string) error {
	for _, e := range entries {
		name, path, ok := strings.Cut(e, "=")
		if !ok {
			return fmt.Errorf("invalid --nix-path entry %q, want name=path", e)
		}
		cfg.NixPath[name] = path
	}
	return nil
}

// envPathResolver adapts nixPathConfig to adt.EnvPathResolver.
type envPathResolver struct {
	entries map[string]string
}

func (r *envPathResolver) Resolve(token string) (string, error) {
	p, ok := r.entries[token]
	if !ok {
		return "", fmt.Errorf("no NIX_PATH entry named %q", token)
	}
	return p, nil
}
