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

// Package index models the package index: descriptor records, the identity
// of a package on its forge, and a read-only snapshot of known versions.
package index

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/pkgsmith/index-checker/internal/semver"
)

// Root is the top-level directory of the index that holds all entries.
const Root = "github"

// Identity pins a package to a location on the forge: an organization, a
// repository, an optional subdirectory within that repository, and a commit.
type Identity struct {
	Org    string
	Name   string
	Path   string
	Commit string
}

type wireIdentity struct {
	Github *wireGithubIdentity `json:"github"`
}

type wireGithubIdentity struct {
	Org    string `json:"org"`
	Name   string `json:"name"`
	Path   string `json:"path,omitempty"`
	Commit string `json:"commit"`
}

func (id Identity) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireIdentity{Github: &wireGithubIdentity{
		Org:    id.Org,
		Name:   id.Name,
		Path:   id.Path,
		Commit: id.Commit,
	}})
}

func (id *Identity) UnmarshalJSON(data []byte) error {
	var w wireIdentity
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Github == nil {
		return fmt.Errorf("package id must be a github id")
	}
	*id = Identity{
		Org:    w.Github.Org,
		Name:   w.Github.Name,
		Path:   w.Github.Path,
		Commit: w.Github.Commit,
	}
	return id.validate()
}

func (id Identity) validate() error {
	if id.Org == "" {
		return fmt.Errorf("package id is missing an org")
	}
	if id.Name == "" {
		return fmt.Errorf("package id is missing a name")
	}
	if strings.Contains(id.Path, "/") {
		return fmt.Errorf("package path %q must be a single directory", id.Path)
	}
	if !isCommitHash(id.Commit) {
		return fmt.Errorf("invalid commit %q: must be a 40-character hex pin", id.Commit)
	}
	return nil
}

func isCommitHash(s string) bool {
	if len(s) != 40 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// IndexPath is the directory under which this package's descriptor file
// lives, relative to the repository root: github/org/name[/path].
func (id Identity) IndexPath() string {
	return path.Join(Root, id.Org, id.Name, id.Path)
}

// RepoURL is the clone URL for the repository hosting the package.
func (id Identity) RepoURL() string {
	return fmt.Sprintf("https://github.com/%s/%s.git", id.Org, id.Name)
}

func (id Identity) String() string {
	return path.Join(id.Org, id.Name, id.Path)
}

// Descriptor is one published package version as recorded in the index:
// a single line of JSON in the entry file. The authors, description,
// keywords and license fields are carried but not validated here.
type Descriptor struct {
	ID                 Identity                     `json:"id"`
	Version            semver.Version               `json:"version"`
	MinimalToolVersion semver.Version               `json:"minimal_tool_version"`
	Dependencies       map[string]semver.Constraint `json:"dependencies"`
	Authors            []string                     `json:"authors"`
	Description        string                       `json:"description"`
	Keywords           []string                     `json:"keywords"`
	License            string                       `json:"license"`
	V                  int                          `json:"v"`
}

// ParseDescriptor decodes one descriptor line and checks the fields this
// pipeline relies on.
func ParseDescriptor(line string) (Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal([]byte(line), &d); err != nil {
		return Descriptor{}, err
	}
	if d.ID == (Identity{}) {
		return Descriptor{}, fmt.Errorf("missing package id")
	}
	if d.Version.IsZero() {
		return Descriptor{}, fmt.Errorf("missing package version")
	}
	return d, nil
}

// DependencyIDs returns the declared dependency identities in sorted order,
// so that dependency checks and report lines are deterministic.
func (d Descriptor) DependencyIDs() []string {
	ids := make([]string, 0, len(d.Dependencies))
	for id := range d.Dependencies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
