package lemma

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"résumé", "resume"},
		{"Resume", "resume"},
		{"naïve", "naive"},
		{"information", "information"},
		{"Ångström", "angstrom"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestJapaneseLemmatize(t *testing.T) {
	j, err := NewJapanese()
	if err != nil {
		t.Fatalf("new japanese: %v", err)
	}
	candidates := j.Lemmatize("食べた", "v")
	found := false
	for _, c := range candidates {
		if c == "食べる" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected dictionary form 食べる among %v", candidates)
	}
}

func TestJapaneseLemmatizeExcludesSurface(t *testing.T) {
	j, err := NewJapanese()
	if err != nil {
		t.Fatalf("new japanese: %v", err)
	}
	for _, c := range j.Lemmatize("犬", "n") {
		if c == "犬" {
			t.Fatalf("surface form must not be repeated as a candidate")
		}
	}
}
