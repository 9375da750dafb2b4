// Package lmf defines the bulk lexicon records the engine consumes.
//
// The records mirror the WN-LMF interchange format one lexicon at a time.
// Producing them (parsing XML) is the reader's job, not this package's; the
// engine only needs the shapes declared here plus the lightweight Scan
// projection used for cheap pre-checks before a full parse.
package lmf

// Metadata is the free-form provenance block most elements may carry
// (Dublin-Core-ish keys plus confidence).
type Metadata map[string]string

// Lexicon is one complete lexicon record ready for loading.
type Lexicon struct {
	ID       string
	Version  string
	Label    string
	Language string
	Email    string
	License  string
	URL      string
	Citation string
	Logo     string
	Meta     Metadata

	// Requires lists soft dependencies on other lexicons. They are used as
	// relation-expansion candidates and need not be installed.
	Requires []Ref
	// Extends names the base lexicon this one extends, if any. An extension
	// may attach data to base-owned elements via external stubs.
	Extends *Ref

	Entries    []Entry
	Synsets    []Synset
	Behaviours []SyntacticBehaviour
}

// Specifier returns the id:version pair naming this lexicon.
func (l *Lexicon) Specifier() string { return l.ID + ":" + l.Version }

// Ref is a reference to another lexicon by id and version.
type Ref struct {
	ID      string
	Version string
	URL     string
}

// Scan is the projection of a lexicon record sufficient for pre-checks:
// deciding whether a file is already loaded or whether its base is present,
// without parsing entries and synsets.
type Scan struct {
	ID      string
	Version string
	Label   string
	Extends *Ref
}

// Scan returns the pre-check projection of the lexicon.
func (l *Lexicon) Scan() Scan {
	return Scan{ID: l.ID, Version: l.Version, Label: l.Label, Extends: l.Extends}
}

// Entry is one word: a lemma, alternate forms, and an ordered sense list.
// External marks a stub attaching data to an entry owned by the base
// lexicon; stubs carry no lemma of their own.
type Entry struct {
	ID       string
	POS      string
	Lemma    Form
	Forms    []Form
	Senses   []Sense
	External bool
	Meta     Metadata
}

// Form is one written form of an entry.
type Form struct {
	Value          string
	Script         string
	Pronunciations []Pronunciation
	Tags           []Tag
}

// Pronunciation is a phonetic rendering of a form.
type Pronunciation struct {
	Value    string
	Variety  string
	Notation string
	Phonemic bool
	Audio    string
}

// Tag is a free-text annotation on a form, bucketed by category.
type Tag struct {
	Text     string
	Category string
}

// Sense links its entry to a synset. Declaration order determines both rank
// numbers at load time.
type Sense struct {
	ID          string
	SynsetID    string
	Adjposition string
	Lexicalized *bool // nil means true
	Relations   []Relation
	Examples    []Example
	Counts      []Count
	// BehaviourIDs reference subcategorization frames declared on the
	// lexicon.
	BehaviourIDs []string
	External     bool
	Meta         Metadata
}

// Count is a corpus frequency for a sense.
type Count struct {
	Value int
	Meta  Metadata
}

// Synset is one concept node.
type Synset struct {
	ID string
	// ILI is the interlingual index key: empty for none, the reserved value
	// "in" for a proposed ILI (carrying ILIDefinition), otherwise a concrete
	// ILI id.
	ILI           string
	ILIDefinition string
	POS           string
	Lexfile       string
	Lexicalized   *bool // nil means true
	// Members fixes the synset-rank order of member senses; when empty the
	// order of sense declarations in entries is used.
	Members     []string
	Definitions []Definition
	Examples    []Example
	Relations   []Relation
	External    bool
	Meta        Metadata
}

// Definition is a gloss, optionally attributed to a source sense.
type Definition struct {
	Text          string
	Language      string
	SourceSenseID string
	Meta          Metadata
}

// Example is an example of use.
type Example struct {
	Text     string
	Language string
	Meta     Metadata
}

// Relation is a typed edge out of a sense or synset. The permitted type
// names depend on which of the three relation kinds the edge belongs to and
// are validated at load time.
type Relation struct {
	Type   string
	Target string
	Meta   Metadata
}

// SyntacticBehaviour is a subcategorization frame shared by senses.
type SyntacticBehaviour struct {
	ID       string
	Frame    string
	SenseIDs []string
}
