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

// Package submission classifies patched paths against the index layout and
// extracts the package descriptors a diff adds.
package submission

import (
	"path"
	"strings"

	"github.com/pkgsmith/index-checker/pkg/diff"
	"github.com/pkgsmith/index-checker/pkg/index"
)

const (
	// newFilePrefix is the diff tool's marker on post-image paths.
	newFilePrefix = "b"
	// benignRoot is the one adjacent directory contributors may touch in
	// the same PR without failing the report (CI configuration tweaks).
	benignRoot = ".github"
)

// Class is the verdict for one patched path.
type Class int

const (
	// InScope paths are index entries and proceed to extraction.
	InScope Class = iota
	// Benign paths are out of scope but only warrant a warning.
	Benign
	// Rejected paths are almost certainly a mistake and fail the report.
	Rejected
)

// Classify decides what to do with a patched path. It is pure prefix
// matching on the path separator; no filesystem access.
func Classify(p string) Class {
	parts := strings.SplitN(p, "/", 3)
	if len(parts) < 2 || parts[0] != newFilePrefix {
		return Rejected
	}
	switch parts[1] {
	case index.Root:
		return InScope
	case benignRoot:
		return Benign
	default:
		return Rejected
	}
}

// DisplayPath strips the diff prefix from a path for diagnostics, so the
// submitter sees the path as it appears in their branch.
func DisplayPath(p string) string {
	if rest, ok := strings.CutPrefix(p, newFilePrefix+"/"); ok {
		return rest
	}
	return p
}

// ChangedPackages walks the added lines of in-scope patches and returns the
// descriptors they add, in file-then-line order. Any structural problem is
// fatal for the whole diff: reporting a partial extraction would let a bad
// entry hide behind good ones.
func ChangedPackages(patches []diff.Patch) ([]index.Descriptor, error) {
	var ret []index.Descriptor
	for _, patch := range patches {
		pkgs, err := changedInPatch(patch)
		if err != nil {
			return nil, err
		}
		ret = append(ret, pkgs...)
	}
	return ret, nil
}

func changedInPatch(patch diff.Patch) ([]index.Descriptor, error) {
	parts := strings.Split(patch.NewPath, "/")
	if len(parts) < 2 || parts[0] != newFilePrefix || parts[1] != index.Root {
		return nil, &BadPrefixError{Path: patch.NewPath}
	}
	rest := parts[2:]
	switch {
	case len(rest) < 1 || rest[0] == "":
		return nil, &MissingOrgError{Path: patch.NewPath}
	case len(rest) < 2 || rest[1] == "":
		return nil, &MissingRepoError{Path: patch.NewPath}
	case len(rest) > 3 || (len(rest) == 3 && rest[2] == ""):
		// A trailing slash would otherwise vanish in path.Join and let
		// the entry masquerade as a subdir-less package.
		return nil, &TooDeepError{Path: patch.NewPath}
	}
	entryPath := path.Join(parts[1:]...)

	var ret []index.Descriptor
	for _, hunk := range patch.Hunks {
		for _, line := range hunk.Lines {
			switch line.Op {
			case diff.Removed:
				return nil, &DeletionError{Line: line.Text}
			case diff.Context:
				// Existing entries are not re-validated.
			case diff.Added:
				d, err := index.ParseDescriptor(line.Text)
				if err != nil {
					return nil, &DescriptorError{Path: patch.NewPath, Err: err}
				}
				if got := d.ID.IndexPath(); got != entryPath {
					return nil, &PathMismatchError{Path: entryPath, Package: got}
				}
				ret = append(ret, d)
			}
		}
	}
	return ret, nil
}
