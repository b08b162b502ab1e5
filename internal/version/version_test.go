package version

import "testing"

func TestParseDiscardsBuildMetadata(t *testing.T) {
	cases := map[string]ServerVersion{
		"9.3.0-SNAPSHOT":  {Major: 9, Minor: 3, Patch: 0},
		"9.3.0+build.42":  {Major: 9, Minor: 3, Patch: 0},
		"8.17.3":          {Major: 8, Minor: 17, Patch: 3},
		"v9.2.0":          {Major: 9, Minor: 2, Patch: 0},
		"9.2.99-SNAPSHOT": {Major: 9, Minor: 2, Patch: 99},
	}
	for in, want := range cases {
		got, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if got.Major != want.Major || got.Minor != want.Minor || got.Patch != want.Patch {
			t.Errorf("Parse(%q) = %+v, want %+v", in, got, want)
		}
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("not-a-version"); err == nil {
		t.Fatal("expected error for unparseable version string")
	}
}

func TestIsSupportedGatesAcrossVersions(t *testing.T) {
	cases := []struct {
		family  Family
		version string
		want    bool
	}{
		{FamilyWorkflows, "8.17.3", false},
		{FamilyWorkflows, "9.1.0", false},
		{FamilyWorkflows, "9.2.0", false},
		{FamilyWorkflows, "9.2.99", false},
		{FamilyWorkflows, "9.3.0", true},
		{FamilyAgents, "9.2.0", true},
		{FamilyAgents, "9.1.0", false},
		{FamilySpaces, "8.0.0", true},
		{FamilySavedObjects, "8.5.0", true},
	}
	for _, c := range cases {
		v, err := Parse(c.version)
		if err != nil {
			t.Fatal(err)
		}
		if got := IsSupported(c.family, v); got != c.want {
			t.Errorf("IsSupported(%s, %s) = %v, want %v", c.family, c.version, got, c.want)
		}
	}
}

func TestProfileDistinguishesTechPreviewFromGA(t *testing.T) {
	techPreview, _ := Parse("9.2.1")
	ga, _ := Parse("9.3.0")
	if got := Profile(FamilyAgents, techPreview); got != ProfileTechPreview {
		t.Errorf("Profile(agents, 9.2.1) = %s, want tech_preview", got)
	}
	if got := Profile(FamilyAgents, ga); got != ProfileGA {
		t.Errorf("Profile(agents, 9.3.0) = %s, want ga", got)
	}
}

func TestIsPushCompatible(t *testing.T) {
	cases := []struct {
		recorded, current string
		want               bool
	}{
		{"9.3.2", "9.2.7", false}, // minor regression, same major
		{"9.2.0", "9.3.0", true},  // minor advanced, same major
		{"9.2.0", "9.2.5", true},  // patch-only difference
		{"8.5.0", "9.0.0", false}, // major mismatch
		{"9.3.0", "8.9.0", false},
	}
	for _, c := range cases {
		r, _ := Parse(c.recorded)
		cur, _ := Parse(c.current)
		if got := IsPushCompatible(r, cur); got != c.want {
			t.Errorf("IsPushCompatible(%s, %s) = %v, want %v", c.recorded, c.current, got, c.want)
		}
	}
}
