/*
Copyright © 2025 Pkgsmith, Inc.

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

// Package manifest evaluates the author-controlled manifest file found in a
// fetched package tree.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pkgsmith/index-checker/internal/semver"
)

// FileName is the manifest file expected at the package's directory root.
const FileName = "package.yaml"

// Manifest is the evaluated manifest: the authoritative version declared by
// the package author, plus the declared dependency requirements.
type Manifest struct {
	Version      semver.Version
	Dependencies map[string]semver.Constraint
}

// Evaluator parses and evaluates one manifest file against the
// package-manifest schema.
type Evaluator interface {
	Evaluate(path string) (Manifest, error)
}

type document struct {
	Name         string            `yaml:"name"`
	Version      string            `yaml:"version"`
	Dependencies map[string]string `yaml:"dependencies"`
}

// YAMLEvaluator is the default Evaluator for YAML manifests.
type YAMLEvaluator struct{}

func (YAMLEvaluator) Evaluate(path string) (Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return Manifest{}, err
	}
	defer file.Close()

	var doc document
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return Manifest{}, fmt.Errorf("failed to decode manifest %s: %w", path, err)
	}

	if doc.Version == "" {
		return Manifest{}, fmt.Errorf("manifest %s declares no version", path)
	}
	version, err := semver.Parse(doc.Version)
	if err != nil {
		return Manifest{}, fmt.Errorf("manifest %s: %w", path, err)
	}

	deps := make(map[string]semver.Constraint, len(doc.Dependencies))
	for id, raw := range doc.Dependencies {
		c, err := semver.ParseConstraint(raw)
		if err != nil {
			return Manifest{}, fmt.Errorf("manifest %s, dependency %s: %w", path, id, err)
		}
		deps[id] = c
	}

	return Manifest{Version: version, Dependencies: deps}, nil
}
