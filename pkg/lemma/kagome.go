package lemma

import (
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Japanese lemmatizes via morphological analysis with the IPA dictionary.
// Japanese has no whitespace and heavy inflection, so a written form is
// segmented and each token reduced to its dictionary form.
type Japanese struct {
	t *tokenizer.Tokenizer
}

// NewJapanese builds the analyzer. The dictionary is embedded; no files are
// read at runtime.
func NewJapanese() (*Japanese, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Japanese{t: t}, nil
}

// Lemmatize returns candidate dictionary forms for the given surface form.
// A single-token form yields its base form; a multi-token form additionally
// yields the concatenation of all base forms. pos is ignored: the IPA
// dictionary's POS labels do not align with wordnet parts of speech.
func (j *Japanese) Lemmatize(form, pos string) []string {
	tokens := j.t.Tokenize(form)

	var candidates []string
	seen := map[string]bool{form: true}
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			candidates = append(candidates, s)
		}
	}

	var joined strings.Builder
	for _, tok := range tokens {
		if tok.Class == tokenizer.DUMMY || strings.TrimSpace(tok.Surface) == "" {
			continue
		}
		base := tok.Surface
		// IPA feature 6 is the base form; "*" means none recorded.
		if features := tok.Features(); len(features) > 6 && features[6] != "*" {
			base = features[6]
		}
		if len(tokens) == 1 {
			add(base)
		}
		joined.WriteString(base)
	}
	if len(tokens) > 1 {
		add(joined.String())
	}
	return candidates
}
