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

// Package validate orchestrates the diff-to-validated-submission pipeline:
// parse, classify, extract, then check every extracted package against its
// source and the index.
package validate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkgsmith/index-checker/internal/semver"
	"github.com/pkgsmith/index-checker/pkg/diff"
	"github.com/pkgsmith/index-checker/pkg/index"
	"github.com/pkgsmith/index-checker/pkg/manifest"
	"github.com/pkgsmith/index-checker/pkg/report"
	"github.com/pkgsmith/index-checker/pkg/submission"
)

// Members answers whether a user is a publicly visible member of an
// organization. Errors here are fatal to the run: they mean the checker is
// malfunctioning, not that the submission is bad.
type Members interface {
	IsPublicMember(ctx context.Context, org, user string) (bool, error)
}

// Fetcher materializes a repository at a pinned commit into dest. Errors
// are recorded per package, not fatal.
type Fetcher interface {
	Fetch(ctx context.Context, url, commit, dest string) error
}

// Index answers which versions are published for a dependency identity.
// The snapshot behind it is loaded once per run and never refreshed.
type Index interface {
	AvailableVersions(id string) ([]semver.Version, error)
}

// Checker runs the full submission validation for one pull request.
type Checker struct {
	Members   Members
	Fetcher   Fetcher
	Evaluator manifest.Evaluator
	Index     Index
}

// MakeReport validates the raw diff of a pull request submitted by
// reporter. Structural problems with the diff come back inside the report
// as its invalid-diff variant; a non-nil error means the checker itself
// failed (membership or index lookups) and no report could be produced.
//
// Packages are checked sequentially in extraction order and every package
// is reported on, even when an earlier one fails.
func (c *Checker) MakeReport(ctx context.Context, rawDiff, reporter string) (*report.Report, error) {
	patches, err := diff.Parse(rawDiff)
	if err != nil {
		return report.NewInvalidDiff(err), nil
	}

	var items []report.Item
	var inScope []diff.Patch
	for _, patch := range patches {
		switch submission.Classify(patch.NewPath) {
		case submission.InScope:
			inScope = append(inScope, patch)
		case submission.Benign:
			items = append(items, report.PathDiagnostic{Benign: true, Path: submission.DisplayPath(patch.NewPath)})
		case submission.Rejected:
			items = append(items, report.PathDiagnostic{Path: submission.DisplayPath(patch.NewPath)})
		}
	}

	pkgs, err := submission.ChangedPackages(inScope)
	if err != nil {
		return report.NewInvalidDiff(err), nil
	}

	for _, pkg := range pkgs {
		pkgReport, err := c.checkPackage(ctx, reporter, pkg)
		if err != nil {
			return nil, err
		}
		items = append(items, pkgReport)
	}

	return report.New(items), nil
}

func (c *Checker) checkPackage(ctx context.Context, reporter string, pkg index.Descriptor) (*report.PackageReport, error) {
	perm, err := c.checkPermission(ctx, reporter, pkg.ID)
	if err != nil {
		return nil, fmt.Errorf("membership check for %s: %w", pkg.ID, err)
	}

	status, err := c.checkSource(ctx, pkg)
	if err != nil {
		return nil, err
	}

	return &report.PackageReport{Pkg: pkg, Permission: perm, Status: status}, nil
}

// checkPermission decides whether reporter may publish under the package's
// namespace. A submitter whose handle equals the owning org self-owns the
// namespace and needs no membership call.
func (c *Checker) checkPermission(ctx context.Context, reporter string, id index.Identity) (report.Permission, error) {
	allowed := reporter == id.Org
	if !allowed {
		member, err := c.Members.IsPublicMember(ctx, id.Org, reporter)
		if err != nil {
			return report.Permission{}, err
		}
		allowed = member
	}
	return report.Permission{User: reporter, Org: id.Org, Repo: id.Name, Allowed: allowed}, nil
}

// checkSource fetches the package into a scratch directory and evaluates
// its manifest. The scratch directory is released on every exit path.
func (c *Checker) checkSource(ctx context.Context, pkg index.Descriptor) (report.PackageStatus, error) {
	scratch, err := os.MkdirTemp("", "index-checker-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(scratch)

	if err := c.Fetcher.Fetch(ctx, pkg.ID.RepoURL(), pkg.ID.Commit, scratch); err != nil {
		return report.FetchFailed{Message: err.Error()}, nil
	}

	manifestPath := filepath.Join(scratch, pkg.ID.Path, manifest.FileName)
	m, err := c.Evaluator.Evaluate(manifestPath)
	if err != nil {
		return report.EvalFailed{Message: err.Error()}, nil
	}

	return c.checkManifest(pkg, m)
}

// checkManifest compares the descriptor version to the manifest version and
// tests every dependency the descriptor declares against the versions the
// index knows.
func (c *Checker) checkManifest(pkg index.Descriptor, m manifest.Manifest) (report.PackageStatus, error) {
	checks := &report.ManifestChecks{
		IndexVersion:    pkg.Version,
		ManifestVersion: m.Version,
	}

	for _, depID := range pkg.DependencyIDs() {
		constraint := pkg.Dependencies[depID]
		known, err := c.Index.AvailableVersions(depID)
		if err != nil {
			return nil, fmt.Errorf("index lookup for %s: %w", depID, err)
		}

		hasMatch := false
		for _, v := range known {
			if constraint.Matches(v) {
				hasMatch = true
				break
			}
		}
		checks.Dependencies = append(checks.Dependencies, report.DependencyCheck{
			ID:            depID,
			Constraint:    constraint,
			KnownVersions: known,
			HasMatch:      hasMatch,
		})
	}

	return checks, nil
}
