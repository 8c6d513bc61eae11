package semver

import (
	"encoding/json"
	"fmt"
	"sort"

	mm "github.com/Masterminds/semver/v3"
)

// Version is a semantic version.
//
// This is a thin wrapper around github.com/Masterminds/semver/v3. On the
// wire (in index descriptors) a version is an object of the form
// {"major":0,"minor":2,"patch":0,"pre":""}.
type Version struct {
	v *mm.Version
}

// Constraint is a semantic version requirement, e.g. "^1" or ">=1.2.0 <2".
// On the wire it is a plain string.
type Constraint struct {
	c   *mm.Constraints
	raw string
}

type wireVersion struct {
	Major uint64 `json:"major"`
	Minor uint64 `json:"minor"`
	Patch uint64 `json:"patch"`
	Pre   string `json:"pre"`
}

func New(major, minor, patch uint64, pre string) Version {
	return Version{v: mm.New(major, minor, patch, pre, "")}
}

func Parse(raw string) (Version, error) {
	v, err := mm.StrictNewVersion(raw)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	return Version{v: v}, nil
}

func MustParse(raw string) Version {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// IsZero reports whether v is the zero value, i.e. was never parsed.
func (v Version) IsZero() bool {
	return v.v == nil
}

func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.String()
}

// Equal reports exact equality: 0.2.0 and 0.2.0-pre are different versions.
func (v Version) Equal(o Version) bool {
	return Compare(v, o) == 0
}

// Compare returns -1, 0 or 1 when v is less than, equal to or greater
// than o. Pre-release versions order before their release per semver.
func Compare(v, o Version) int {
	if v.v == nil && o.v == nil {
		return 0
	}
	if v.v == nil {
		return -1
	}
	if o.v == nil {
		return 1
	}
	return v.v.Compare(o.v)
}

func (v Version) MarshalJSON() ([]byte, error) {
	if v.v == nil {
		return nil, fmt.Errorf("cannot marshal zero version")
	}
	return json.Marshal(wireVersion{
		Major: v.v.Major(),
		Minor: v.v.Minor(),
		Patch: v.v.Patch(),
		Pre:   v.v.Prerelease(),
	})
}

func (v *Version) UnmarshalJSON(data []byte) error {
	var w wireVersion
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	raw := fmt.Sprintf("%d.%d.%d", w.Major, w.Minor, w.Patch)
	if w.Pre != "" {
		raw += "-" + w.Pre
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Sort orders versions ascending, in place.
func Sort(versions []Version) {
	sort.Slice(versions, func(i, j int) bool {
		return Compare(versions[i], versions[j]) < 0
	})
}

func ParseConstraint(raw string) (Constraint, error) {
	c, err := mm.NewConstraint(raw)
	if err != nil {
		return Constraint{}, fmt.Errorf("invalid version requirement %q: %w", raw, err)
	}
	return Constraint{c: c, raw: raw}, nil
}

func MustParseConstraint(raw string) Constraint {
	c, err := ParseConstraint(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Constraint) String() string {
	return c.raw
}

// Matches reports whether v satisfies the requirement.
func (c Constraint) Matches(v Version) bool {
	if c.c == nil || v.v == nil {
		return false
	}
	return c.c.Check(v.v)
}

func (c Constraint) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.raw)
}

func (c *Constraint) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseConstraint(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
