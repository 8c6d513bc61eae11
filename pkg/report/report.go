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

// Package report builds the hierarchical pass/fail report for one
// submission. The same rendered text goes to the terminal and to the pull
// request comment, so rendering is a pure function of the tree.
package report

import (
	"fmt"
	"strings"

	"github.com/pkgsmith/index-checker/internal/semver"
	"github.com/pkgsmith/index-checker/pkg/index"
)

const (
	glyphOK   = "✅"
	glyphFail = "❌"
	glyphWarn = "⚠️"

	indentStep = "  "
)

// Report is the whole-submission result: either a terminal invalid-diff
// failure, or an ordered list of per-path diagnostics and package reports.
type Report struct {
	invalidDiff error
	items       []Item
}

// NewInvalidDiff builds the terminal failure variant. An unparsable diff can
// never contain a trustworthy submission, so it carries no items.
func NewInvalidDiff(err error) *Report {
	return &Report{invalidDiff: err}
}

// New builds the item-list variant, preserving insertion order.
func New(items []Item) *Report {
	return &Report{items: items}
}

// IsGood recomputes acceptability bottom-up from the items.
func (r *Report) IsGood() bool {
	if r.invalidDiff != nil {
		return false
	}
	for _, item := range r.items {
		if !item.IsGood() {
			return false
		}
	}
	return true
}

// Items returns the report entries in insertion order. Nil for the
// invalid-diff variant.
func (r *Report) Items() []Item {
	return r.items
}

func (r *Report) String() string {
	var b strings.Builder
	if r.invalidDiff != nil {
		fmt.Fprintf(&b, "%s invalid index changes: %v\n", glyphFail, r.invalidDiff)
		return b.String()
	}
	for _, item := range r.items {
		item.render(&b, " ")
	}
	return b.String()
}

// Item is one top-level report entry. The set of kinds is closed: a path
// diagnostic or a package report, nothing else.
type Item interface {
	IsGood() bool
	render(b *strings.Builder, indent string)
}

// PathDiagnostic records a patched path that lies outside the index.
// Benign ones (CI configuration) warn without failing the report; anything
// else is a mistake and fails it.
type PathDiagnostic struct {
	Benign bool
	Path   string
}

func (d PathDiagnostic) IsGood() bool { return d.Benign }

func (d PathDiagnostic) render(b *strings.Builder, indent string) {
	glyph := glyphFail
	if d.Benign {
		glyph = glyphWarn
	}
	fmt.Fprintf(b, "%s- %s this PR modifies %s\n", indent, glyph, d.Path)
}

// Permission is the verdict for one submitter against one package.
type Permission struct {
	// User is the submitter handle.
	User string
	// Org and Repo name the package's owning namespace.
	Org  string
	Repo string
	// Allowed is true when the submitter owns the namespace or is a
	// public member of the owning organization.
	Allowed bool
}

// PackageStatus is how far one package got through validation: fetch
// failure, manifest evaluation failure, or a full manifest check.
type PackageStatus interface {
	isPackageStatus()
}

type FetchFailed struct {
	Message string
}

type EvalFailed struct {
	Message string
}

// ManifestChecks cross-checks the fetched manifest against the index
// descriptor and the known-version set.
type ManifestChecks struct {
	IndexVersion    semver.Version
	ManifestVersion semver.Version
	Dependencies    []DependencyCheck
}

func (FetchFailed) isPackageStatus()     {}
func (EvalFailed) isPackageStatus()      {}
func (*ManifestChecks) isPackageStatus() {}

func (m *ManifestChecks) IsGood() bool {
	if !m.IndexVersion.Equal(m.ManifestVersion) {
		return false
	}
	for _, dep := range m.Dependencies {
		if !dep.IsGood() {
			return false
		}
	}
	return true
}

func (m *ManifestChecks) render(b *strings.Builder, indent string) {
	if m.IndexVersion.Equal(m.ManifestVersion) {
		fmt.Fprintf(b, "%s* %s manifest version matches\n", indent, glyphOK)
	} else {
		fmt.Fprintf(b, "%s* %s index version %s doesn't match manifest version %s\n",
			indent, glyphFail, m.IndexVersion, m.ManifestVersion)
	}

	if len(m.Dependencies) == 0 {
		fmt.Fprintf(b, "%s* %s no dependencies to check\n", indent, glyphOK)
		return
	}
	fmt.Fprintf(b, "%schecking dependencies:\n", indent)
	for _, dep := range m.Dependencies {
		dep.render(b, indent)
	}
}

// DependencyCheck is one declared dependency tested against the versions
// the index knows. Matching is pure: good iff any known version satisfies
// the declared requirement.
type DependencyCheck struct {
	ID            string
	Constraint    semver.Constraint
	KnownVersions []semver.Version
	HasMatch      bool
}

func (d DependencyCheck) IsGood() bool { return d.HasMatch }

func (d DependencyCheck) render(b *strings.Builder, indent string) {
	switch {
	case d.HasMatch:
		fmt.Fprintf(b, "%s- %s %s %s\n", indent, glyphOK, d.ID, d.Constraint)
	case len(d.KnownVersions) == 0:
		fmt.Fprintf(b, "%s- %s %s doesn't exist in the index\n", indent, glyphFail, d.ID)
	default:
		known := make([]string, len(d.KnownVersions))
		for i, v := range d.KnownVersions {
			known[i] = v.String()
		}
		fmt.Fprintf(b, "%s- %s %s %s doesn't match any versions: known versions are %s\n",
			indent, glyphFail, d.ID, d.Constraint, strings.Join(known, ", "))
	}
}

// PackageReport is the full result for one extracted package.
type PackageReport struct {
	Pkg        index.Descriptor
	Permission Permission
	Status     PackageStatus
}

func (r *PackageReport) IsGood() bool {
	if !r.Permission.Allowed {
		return false
	}
	checks, ok := r.Status.(*ManifestChecks)
	return ok && checks.IsGood()
}

func (r *PackageReport) render(b *strings.Builder, indent string) {
	fmt.Fprintf(b, "%s- package %s, version %s\n", indent, r.Pkg.ID, r.Pkg.Version)
	child := indent + indentStep

	perm := r.Permission
	if perm.Allowed {
		fmt.Fprintf(b, "%s* %s this PR is by %s, a collaborator on %s/%s\n",
			child, glyphOK, perm.User, perm.Org, perm.Repo)
	} else {
		fmt.Fprintf(b, "%s* %s this PR is by %s, who is not a public member of %s\n",
			child, glyphFail, perm.User, perm.Org)
	}

	switch status := r.Status.(type) {
	case FetchFailed:
		fmt.Fprintf(b, "%s* %s failed to fetch package: %s\n", child, glyphFail, status.Message)
	case EvalFailed:
		fmt.Fprintf(b, "%s* %s fetched package\n", child, glyphOK)
		fmt.Fprintf(b, "%s* %s failed to evaluate manifest: %s\n", child, glyphFail, status.Message)
	case *ManifestChecks:
		fmt.Fprintf(b, "%s* %s fetched package\n", child, glyphOK)
		fmt.Fprintf(b, "%s* %s evaluated manifest\n", child, glyphOK)
		status.render(b, child+indentStep)
	}
}
