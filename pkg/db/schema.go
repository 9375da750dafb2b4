package db

// schemaSQL is the full normalized schema. Lexicon rows are the root of
// every cascade: removing a lexicon clears all of its content rows through
// the foreign keys below. An extension's base row is protected by RESTRICT
// so a base can never be deleted while an extension still references it.
const schemaSQL = `
CREATE TABLE lexicons (
    rowid INTEGER PRIMARY KEY,
    id TEXT NOT NULL,
    version TEXT NOT NULL,
    label TEXT NOT NULL,
    language TEXT NOT NULL,
    email TEXT,
    license TEXT,
    url TEXT,
    citation TEXT,
    logo TEXT,
    metadata TEXT,
    UNIQUE (id, version)
);

CREATE TABLE lexicon_dependencies (
    dependent_rowid INTEGER NOT NULL REFERENCES lexicons (rowid) ON DELETE CASCADE,
    provider_id TEXT NOT NULL,
    provider_version TEXT NOT NULL,
    provider_url TEXT,
    provider_rowid INTEGER REFERENCES lexicons (rowid) ON DELETE SET NULL
);
CREATE INDEX lexicon_dependencies_dependent_index
    ON lexicon_dependencies (dependent_rowid);

CREATE TABLE lexicon_extensions (
    extension_rowid INTEGER NOT NULL UNIQUE REFERENCES lexicons (rowid) ON DELETE CASCADE,
    base_id TEXT NOT NULL,
    base_version TEXT NOT NULL,
    base_rowid INTEGER NOT NULL REFERENCES lexicons (rowid) ON DELETE RESTRICT
);
CREATE INDEX lexicon_extensions_base_index
    ON lexicon_extensions (base_rowid);

CREATE TABLE ili_statuses (
    rowid INTEGER PRIMARY KEY,
    status TEXT NOT NULL UNIQUE
);

CREATE TABLE ilis (
    rowid INTEGER PRIMARY KEY,
    id TEXT NOT NULL UNIQUE,
    status_rowid INTEGER NOT NULL REFERENCES ili_statuses (rowid),
    definition TEXT,
    metadata TEXT
);

CREATE TABLE entries (
    rowid INTEGER PRIMARY KEY,
    id TEXT NOT NULL,
    lexicon_rowid INTEGER NOT NULL REFERENCES lexicons (rowid) ON DELETE CASCADE,
    pos TEXT NOT NULL,
    metadata TEXT,
    UNIQUE (id, lexicon_rowid)
);
CREATE INDEX entries_lexicon_index ON entries (lexicon_rowid);

CREATE TABLE forms (
    rowid INTEGER PRIMARY KEY,
    lexicon_rowid INTEGER NOT NULL REFERENCES lexicons (rowid) ON DELETE CASCADE,
    entry_rowid INTEGER NOT NULL REFERENCES entries (rowid) ON DELETE CASCADE,
    form TEXT NOT NULL,
    normalized_form TEXT,
    script TEXT,
    rank INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX forms_entry_index ON forms (entry_rowid);
CREATE INDEX forms_form_index ON forms (form);
CREATE INDEX forms_normalized_index ON forms (normalized_form);

CREATE TABLE pronunciations (
    form_rowid INTEGER NOT NULL REFERENCES forms (rowid) ON DELETE CASCADE,
    value TEXT NOT NULL,
    variety TEXT,
    notation TEXT,
    phonemic INTEGER NOT NULL DEFAULT 1,
    audio TEXT
);
CREATE INDEX pronunciations_form_index ON pronunciations (form_rowid);

CREATE TABLE tags (
    form_rowid INTEGER NOT NULL REFERENCES forms (rowid) ON DELETE CASCADE,
    tag TEXT NOT NULL,
    category TEXT NOT NULL
);
CREATE INDEX tags_form_index ON tags (form_rowid);

CREATE TABLE lexfiles (
    rowid INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE synsets (
    rowid INTEGER PRIMARY KEY,
    id TEXT NOT NULL,
    lexicon_rowid INTEGER NOT NULL REFERENCES lexicons (rowid) ON DELETE CASCADE,
    ili_rowid INTEGER REFERENCES ilis (rowid),
    pos TEXT,
    lexicalized INTEGER NOT NULL DEFAULT 1,
    lexfile_rowid INTEGER REFERENCES lexfiles (rowid),
    metadata TEXT,
    UNIQUE (id, lexicon_rowid)
);
CREATE INDEX synsets_lexicon_index ON synsets (lexicon_rowid);
CREATE INDEX synsets_ili_index ON synsets (ili_rowid);

CREATE TABLE proposed_ilis (
    synset_rowid INTEGER NOT NULL REFERENCES synsets (rowid) ON DELETE CASCADE,
    definition TEXT,
    metadata TEXT
);
CREATE INDEX proposed_ilis_synset_index ON proposed_ilis (synset_rowid);

CREATE TABLE senses (
    rowid INTEGER PRIMARY KEY,
    id TEXT NOT NULL,
    lexicon_rowid INTEGER NOT NULL REFERENCES lexicons (rowid) ON DELETE CASCADE,
    entry_rowid INTEGER NOT NULL REFERENCES entries (rowid) ON DELETE CASCADE,
    entry_rank INTEGER NOT NULL DEFAULT 0,
    synset_rowid INTEGER NOT NULL REFERENCES synsets (rowid) ON DELETE CASCADE,
    synset_rank INTEGER NOT NULL DEFAULT 0,
    lexicalized INTEGER NOT NULL DEFAULT 1,
    adjposition TEXT,
    metadata TEXT,
    UNIQUE (id, lexicon_rowid)
);
CREATE INDEX senses_entry_index ON senses (entry_rowid);
CREATE INDEX senses_synset_index ON senses (synset_rowid);

CREATE TABLE counts (
    lexicon_rowid INTEGER NOT NULL REFERENCES lexicons (rowid) ON DELETE CASCADE,
    sense_rowid INTEGER NOT NULL REFERENCES senses (rowid) ON DELETE CASCADE,
    count INTEGER NOT NULL,
    metadata TEXT
);
CREATE INDEX counts_sense_index ON counts (sense_rowid);

CREATE TABLE definitions (
    lexicon_rowid INTEGER NOT NULL REFERENCES lexicons (rowid) ON DELETE CASCADE,
    synset_rowid INTEGER NOT NULL REFERENCES synsets (rowid) ON DELETE CASCADE,
    definition TEXT NOT NULL,
    language TEXT,
    sense_rowid INTEGER REFERENCES senses (rowid) ON DELETE SET NULL,
    metadata TEXT
);
CREATE INDEX definitions_synset_index ON definitions (synset_rowid);

CREATE TABLE synset_examples (
    lexicon_rowid INTEGER NOT NULL REFERENCES lexicons (rowid) ON DELETE CASCADE,
    synset_rowid INTEGER NOT NULL REFERENCES synsets (rowid) ON DELETE CASCADE,
    example TEXT NOT NULL,
    language TEXT,
    metadata TEXT
);
CREATE INDEX synset_examples_synset_index ON synset_examples (synset_rowid);

CREATE TABLE sense_examples (
    lexicon_rowid INTEGER NOT NULL REFERENCES lexicons (rowid) ON DELETE CASCADE,
    sense_rowid INTEGER NOT NULL REFERENCES senses (rowid) ON DELETE CASCADE,
    example TEXT NOT NULL,
    language TEXT,
    metadata TEXT
);
CREATE INDEX sense_examples_sense_index ON sense_examples (sense_rowid);

CREATE TABLE syntactic_behaviours (
    rowid INTEGER PRIMARY KEY,
    id TEXT,
    lexicon_rowid INTEGER NOT NULL REFERENCES lexicons (rowid) ON DELETE CASCADE,
    frame TEXT NOT NULL
);
CREATE INDEX syntactic_behaviours_lexicon_index
    ON syntactic_behaviours (lexicon_rowid);

CREATE TABLE syntactic_behaviour_senses (
    behaviour_rowid INTEGER NOT NULL REFERENCES syntactic_behaviours (rowid) ON DELETE CASCADE,
    sense_rowid INTEGER NOT NULL REFERENCES senses (rowid) ON DELETE CASCADE
);
CREATE INDEX syntactic_behaviour_senses_sense_index
    ON syntactic_behaviour_senses (sense_rowid);

CREATE TABLE relation_types (
    rowid INTEGER PRIMARY KEY,
    type TEXT NOT NULL UNIQUE
);

CREATE TABLE synset_relations (
    lexicon_rowid INTEGER NOT NULL REFERENCES lexicons (rowid) ON DELETE CASCADE,
    source_rowid INTEGER NOT NULL REFERENCES synsets (rowid) ON DELETE CASCADE,
    target_rowid INTEGER NOT NULL REFERENCES synsets (rowid) ON DELETE CASCADE,
    type_rowid INTEGER NOT NULL REFERENCES relation_types (rowid),
    confidence REAL NOT NULL DEFAULT 1.0,
    metadata TEXT
);
CREATE INDEX synset_relations_source_index ON synset_relations (source_rowid);
CREATE INDEX synset_relations_target_index ON synset_relations (target_rowid);

CREATE TABLE sense_relations (
    lexicon_rowid INTEGER NOT NULL REFERENCES lexicons (rowid) ON DELETE CASCADE,
    source_rowid INTEGER NOT NULL REFERENCES senses (rowid) ON DELETE CASCADE,
    target_rowid INTEGER NOT NULL REFERENCES senses (rowid) ON DELETE CASCADE,
    type_rowid INTEGER NOT NULL REFERENCES relation_types (rowid),
    confidence REAL NOT NULL DEFAULT 1.0,
    metadata TEXT
);
CREATE INDEX sense_relations_source_index ON sense_relations (source_rowid);
CREATE INDEX sense_relations_target_index ON sense_relations (target_rowid);

CREATE TABLE sense_synset_relations (
    lexicon_rowid INTEGER NOT NULL REFERENCES lexicons (rowid) ON DELETE CASCADE,
    source_rowid INTEGER NOT NULL REFERENCES senses (rowid) ON DELETE CASCADE,
    target_rowid INTEGER NOT NULL REFERENCES synsets (rowid) ON DELETE CASCADE,
    type_rowid INTEGER NOT NULL REFERENCES relation_types (rowid),
    confidence REAL NOT NULL DEFAULT 1.0,
    metadata TEXT
);
CREATE INDEX sense_synset_relations_source_index
    ON sense_synset_relations (source_rowid);
CREATE INDEX sense_synset_relations_target_index
    ON sense_synset_relations (target_rowid);
`

// seedSQL populates the lookup rows every store starts with. The ILI status
// names are fixed; relation types and lexfiles are interned lazily during
// load and only ever grow.
const seedSQL = `
INSERT INTO ili_statuses (status) VALUES ('active');
INSERT INTO ili_statuses (status) VALUES ('presupposed');
INSERT INTO ili_statuses (status) VALUES ('proposed');
`

// compatibleFingerprints lists structural fingerprints of earlier schema
// revisions that the current code can still read. The current schema's own
// fingerprint is always accepted and is computed at runtime from schemaSQL,
// so it never has to be maintained by hand.
var compatibleFingerprints = []string{}
