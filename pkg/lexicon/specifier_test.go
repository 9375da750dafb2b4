package lexicon

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		id, ver string
	}{
		{"ewn:2020", "ewn", "2020"},
		{"ewn", "ewn", "*"},
		{"ewn:*", "ewn", "*"},
		{"*", "*", "*"},
		{"", "*", "*"},
		{"*:1.4", "*", "1.4"},
	}
	for _, c := range cases {
		spec := Parse(c.in)
		if spec.ID != c.id || spec.Version != c.ver {
			t.Errorf("Parse(%q) = %s:%s, want %s:%s", c.in, spec.ID, spec.Version, c.id, c.ver)
		}
	}
}

func TestParseAll(t *testing.T) {
	specs := ParseAll("ewn:2020  oewn")
	if len(specs) != 2 {
		t.Fatalf("expected 2 specifiers, got %d", len(specs))
	}
	if specs[0].String() != "ewn:2020" || specs[1].String() != "oewn:*" {
		t.Fatalf("unexpected specifiers: %v", specs)
	}
}

func TestIsWild(t *testing.T) {
	if Parse("ewn:2020").IsWild() {
		t.Errorf("concrete specifier reported wild")
	}
	for _, s := range []string{"ewn", "*", "ewn:1.*", "?wn:2020"} {
		if !Parse(s).IsWild() {
			t.Errorf("Parse(%q) should be wild", s)
		}
	}
}

func TestMatch(t *testing.T) {
	cases := []struct {
		spec    string
		id, ver string
		want    bool
	}{
		{"ewn:2020", "ewn", "2020", true},
		{"ewn:2020", "ewn", "2021", false},
		{"ewn", "ewn", "2021", true},
		{"*", "anything", "0.1", true},
		{"ewn:1.*", "ewn", "1.4", true},
		{"ewn:1.*", "ewn", "2.0", false},
	}
	for _, c := range cases {
		got, err := Parse(c.spec).Match(c.id, c.ver)
		if err != nil {
			t.Fatalf("Match(%q, %s, %s): %v", c.spec, c.id, c.ver, err)
		}
		if got != c.want {
			t.Errorf("Match(%q, %s, %s) = %v, want %v", c.spec, c.id, c.ver, got, c.want)
		}
	}
}
