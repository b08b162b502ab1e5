// Package version parses the Server's advertised version and answers
// per-family capability and request-profile questions against a static
// capability matrix.
package version

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/blang/semver/v4"
)

// ServerVersion is a defensively-parsed (major, minor, patch) triple.
// Build metadata, pre-release labels (e.g. "-SNAPSHOT"), and anything past
// the third dot-separated component are discarded.
type ServerVersion struct {
	Major, Minor, Patch uint64
	raw                 string
}

func (v ServerVersion) String() string {
	if v.raw != "" {
		return v.raw
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Semver returns a semver.Version carrying only the major.minor.patch
// triple, suitable for the comparisons in IsSupported/IsPushCompatible.
func (v ServerVersion) Semver() semver.Version {
	return semver.Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
}

var leadingTriple = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)`)

// Parse extracts the first three dot-separated numeric components from an
// arbitrary version string; trailing build metadata, "-SNAPSHOT" labels,
// "+build.N" suffixes, etc. are ignored.
func Parse(s string) (ServerVersion, error) {
	m := leadingTriple.FindStringSubmatch(s)
	if m == nil {
		return ServerVersion{}, fmt.Errorf("version: could not find a major.minor.patch prefix in %q", s)
	}
	major, _ := strconv.ParseUint(m[1], 10, 64)
	minor, _ := strconv.ParseUint(m[2], 10, 64)
	patch, _ := strconv.ParseUint(m[3], 10, 64)
	return ServerVersion{Major: major, Minor: minor, Patch: patch, raw: s}, nil
}

// Family identifies one of the managed object categories.
type Family string

const (
	FamilySavedObjects Family = "saved_objects"
	FamilySpaces       Family = "spaces"
	FamilyWorkflows    Family = "workflows"
	FamilyAgents       Family = "agents"
	FamilyTools        Family = "tools"
)

// AllFamilies lists every known family, in the canonical manifest/layout
// ordering used for deterministic command-summary output.
var AllFamilies = []Family{FamilySavedObjects, FamilySpaces, FamilyWorkflows, FamilyAgents, FamilyTools}

// ProfileTag distinguishes tech-preview behavior from GA behavior for a
// family at a given Server version.
type ProfileTag string

const (
	ProfileTechPreview ProfileTag = "tech_preview"
	ProfileGA          ProfileTag = "ga"
)

// Thresholds is one row of the capability matrix.
type Thresholds struct {
	Min ServerVersion
	GA  ServerVersion
}

func mustParse(s string) ServerVersion {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Matrix is the static, data-only capability matrix from spec.md §4.1.
var Matrix = map[Family]Thresholds{
	FamilySpaces:       {Min: mustParse("8.0.0"), GA: mustParse("8.0.0")},
	FamilySavedObjects: {Min: mustParse("8.0.0"), GA: mustParse("8.0.0")},
	FamilyAgents:       {Min: mustParse("9.2.0"), GA: mustParse("9.3.0")},
	FamilyTools:        {Min: mustParse("9.2.0"), GA: mustParse("9.3.0")},
	FamilyWorkflows:    {Min: mustParse("9.3.0"), GA: mustParse("9.3.0")},
}

// IsSupported reports whether the given family is usable against the given
// Server version, gating on major.minor only (the patch component never
// participates in the >= comparison).
func IsSupported(f Family, v ServerVersion) bool {
	t, ok := Matrix[f]
	if !ok {
		return false
	}
	return compareMajorMinor(v, t.Min) >= 0
}

// Profile selects the tech-preview/GA request profile for a family at a
// given Server version. A family missing from the Matrix, or a version
// below the family's GA threshold, yields ProfileTechPreview.
func Profile(f Family, v ServerVersion) ProfileTag {
	t, ok := Matrix[f]
	if !ok {
		return ProfileTechPreview
	}
	if compareMajorMinor(v, t.GA) >= 0 {
		return ProfileGA
	}
	return ProfileTechPreview
}

// UnsupportedReason renders a human-readable explanation for a command
// summary when a family is skipped for version reasons.
func UnsupportedReason(f Family, v ServerVersion) string {
	t, ok := Matrix[f]
	if !ok {
		return fmt.Sprintf("family %q is unknown to this tool", f)
	}
	return fmt.Sprintf("requires Server >= %s, detected %s", t.Min, v)
}

// IsPushCompatible enforces the push floor (spec.md §4.2, §8 property 6):
// the current Server's major must match the recorded major, and the
// current minor must be at least the recorded minor. Patch differences are
// always allowed in either direction.
func IsPushCompatible(recorded, current ServerVersion) bool {
	if recorded.Major != current.Major {
		return false
	}
	return current.Minor >= recorded.Minor
}

// compareMajorMinor compares only the major and minor components, treating
// patch as irrelevant for support-gating purposes, as specified.
func compareMajorMinor(a, b ServerVersion) int {
	if a.Major != b.Major {
		if a.Major < b.Major {
			return -1
		}
		return 1
	}
	if a.Minor != b.Minor {
		if a.Minor < b.Minor {
			return -1
		}
		return 1
	}
	return 0
}
