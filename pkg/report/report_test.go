package report

import (
	"errors"
	"strings"
	"testing"

	"github.com/pkgsmith/index-checker/internal/semver"
	"github.com/pkgsmith/index-checker/pkg/index"
)

func testDescriptor() index.Descriptor {
	return index.Descriptor{
		ID: index.Identity{
			Org:    "acme",
			Name:   "widgets",
			Commit: strings.Repeat("a", 40),
		},
		Version: semver.MustParse("0.2.0"),
	}
}

func allowedPermission() Permission {
	return Permission{User: "alice", Org: "acme", Repo: "widgets", Allowed: true}
}

func TestInvalidDiffReport(t *testing.T) {
	r := NewInvalidDiff(errors.New(`you can't delete a line: "entry"`))
	if r.IsGood() {
		t.Error("invalid diff report must not be good")
	}
	want := "❌ invalid index changes: you can't delete a line: \"entry\"\n"
	if r.String() != want {
		t.Errorf("String() = %q, want %q", r.String(), want)
	}
}

func TestGoodPackageReport(t *testing.T) {
	r := New([]Item{
		&PackageReport{
			Pkg:        testDescriptor(),
			Permission: allowedPermission(),
			Status: &ManifestChecks{
				IndexVersion:    semver.MustParse("0.2.0"),
				ManifestVersion: semver.MustParse("0.2.0"),
			},
		},
	})
	if !r.IsGood() {
		t.Error("expected a good report")
	}

	want := ` - package acme/widgets, version 0.2.0
   * ✅ this PR is by alice, a collaborator on acme/widgets
   * ✅ fetched package
   * ✅ evaluated manifest
     * ✅ manifest version matches
     * ✅ no dependencies to check
`
	if r.String() != want {
		t.Errorf("String() =\n%s\nwant:\n%s", r.String(), want)
	}
}

func TestRenderingIsIdempotent(t *testing.T) {
	r := New([]Item{
		PathDiagnostic{Benign: true, Path: ".github/workflows/ci.yml"},
		&PackageReport{
			Pkg:        testDescriptor(),
			Permission: allowedPermission(),
			Status:     FetchFailed{Message: "connection refused"},
		},
	})
	if r.String() != r.String() {
		t.Error("rendering the same report twice must yield identical text")
	}
}

func TestVersionMismatch(t *testing.T) {
	r := &PackageReport{
		Pkg:        testDescriptor(),
		Permission: allowedPermission(),
		Status: &ManifestChecks{
			IndexVersion:    semver.MustParse("0.2.0"),
			ManifestVersion: semver.MustParse("0.1.0"),
		},
	}
	if r.IsGood() {
		t.Error("version mismatch must not be good")
	}
	text := New([]Item{r}).String()
	if !strings.Contains(text, "❌ index version 0.2.0 doesn't match manifest version 0.1.0") {
		t.Errorf("mismatch line missing from:\n%s", text)
	}
}

// Exact prerelease handling: 0.2.0 and 0.2.0-pre are different versions.
func TestVersionEqualityIsExact(t *testing.T) {
	checks := &ManifestChecks{
		IndexVersion:    semver.MustParse("0.2.0"),
		ManifestVersion: semver.MustParse("0.2.0-pre"),
	}
	if checks.IsGood() {
		t.Error("0.2.0 vs 0.2.0-pre must not be good")
	}
}

func TestFetchAndEvalFailures(t *testing.T) {
	fetchFailed := &PackageReport{
		Pkg:        testDescriptor(),
		Permission: allowedPermission(),
		Status:     FetchFailed{Message: "connection refused"},
	}
	if fetchFailed.IsGood() {
		t.Error("fetch failure must not be good")
	}
	text := New([]Item{fetchFailed}).String()
	if !strings.Contains(text, "❌ failed to fetch package: connection refused") {
		t.Errorf("fetch failure line missing from:\n%s", text)
	}
	if strings.Contains(text, "evaluated manifest") {
		t.Errorf("manifest lines must not render after a fetch failure:\n%s", text)
	}

	evalFailed := &PackageReport{
		Pkg:        testDescriptor(),
		Permission: allowedPermission(),
		Status:     EvalFailed{Message: "unexpected token"},
	}
	if evalFailed.IsGood() {
		t.Error("eval failure must not be good")
	}
	text = New([]Item{evalFailed}).String()
	if !strings.Contains(text, "✅ fetched package") {
		t.Errorf("fetch success line missing from:\n%s", text)
	}
	if !strings.Contains(text, "❌ failed to evaluate manifest: unexpected token") {
		t.Errorf("eval failure line missing from:\n%s", text)
	}
}

func TestMissingStatusRenders(t *testing.T) {
	r := &PackageReport{
		Pkg:        testDescriptor(),
		Permission: allowedPermission(),
	}
	if r.IsGood() {
		t.Error("a package without a status must not be good")
	}
	text := New([]Item{r}).String()
	if !strings.Contains(text, "package acme/widgets, version 0.2.0") {
		t.Errorf("package line missing from:\n%s", text)
	}
	if strings.Contains(text, "fetched package") {
		t.Errorf("no fetch outcome should render without a status:\n%s", text)
	}
}

func TestDisallowedSubmitter(t *testing.T) {
	r := &PackageReport{
		Pkg:        testDescriptor(),
		Permission: Permission{User: "mallory", Org: "acme", Repo: "widgets"},
		Status: &ManifestChecks{
			IndexVersion:    semver.MustParse("0.2.0"),
			ManifestVersion: semver.MustParse("0.2.0"),
		},
	}
	if r.IsGood() {
		t.Error("disallowed submitter must not be good")
	}
	text := New([]Item{r}).String()
	if !strings.Contains(text, "❌ this PR is by mallory, who is not a public member of acme") {
		t.Errorf("permission line missing from:\n%s", text)
	}
}

func TestDependencyChecks(t *testing.T) {
	known := []semver.Version{
		semver.MustParse("1.0.0"),
		semver.MustParse("1.2.0"),
		semver.MustParse("2.0.0"),
	}
	checks := &ManifestChecks{
		IndexVersion:    semver.MustParse("0.2.0"),
		ManifestVersion: semver.MustParse("0.2.0"),
		Dependencies: []DependencyCheck{
			{ID: "github/acme/gears", Constraint: semver.MustParseConstraint("^1"), KnownVersions: known, HasMatch: true},
			{ID: "github/acme/ghost", Constraint: semver.MustParseConstraint("^1")},
			{ID: "github/acme/sprockets", Constraint: semver.MustParseConstraint("^3"), KnownVersions: known},
		},
	}
	if checks.IsGood() {
		t.Error("unsatisfied dependencies must not be good")
	}

	text := New([]Item{&PackageReport{
		Pkg:        testDescriptor(),
		Permission: allowedPermission(),
		Status:     checks,
	}}).String()

	for _, want := range []string{
		"     checking dependencies:\n",
		"     - ✅ github/acme/gears ^1\n",
		"     - ❌ github/acme/ghost doesn't exist in the index\n",
		"     - ❌ github/acme/sprockets ^3 doesn't match any versions: known versions are 1.0.0, 1.2.0, 2.0.0\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
}

func TestPathDiagnostics(t *testing.T) {
	benign := PathDiagnostic{Benign: true, Path: ".github/workflows/ci.yml"}
	if !benign.IsGood() {
		t.Error("benign diagnostic must not fail the report")
	}
	stray := PathDiagnostic{Path: "src/main.go"}
	if stray.IsGood() {
		t.Error("stray path must fail the report")
	}

	text := New([]Item{benign, stray}).String()
	want := ` - ⚠️ this PR modifies .github/workflows/ci.yml
 - ❌ this PR modifies src/main.go
`
	if text != want {
		t.Errorf("String() = %q, want %q", text, want)
	}
}

func TestOrderIsInsertionOrder(t *testing.T) {
	r := New([]Item{
		PathDiagnostic{Benign: true, Path: "zz"},
		PathDiagnostic{Benign: true, Path: "aa"},
	})
	text := r.String()
	if strings.Index(text, "zz") > strings.Index(text, "aa") {
		t.Errorf("items must render in insertion order:\n%s", text)
	}
}
