package lmf

// Each relation kind draws its type names from its own closed vocabulary;
// loading rejects names outside the kind's set.

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// SynsetRelationNames is the closed vocabulary of synset-to-synset
// relation types.
var SynsetRelationNames = set(
	"agent", "also", "attribute", "be_in_state", "causes",
	"classified_by", "classifies", "co_agent_instrument", "co_agent_patient",
	"co_agent_result", "co_instrument_agent", "co_instrument_patient",
	"co_instrument_result", "co_patient_agent", "co_patient_instrument",
	"co_result_agent", "co_result_instrument", "co_role", "direction",
	"domain_region", "domain_topic", "entails", "eq_synonym", "exemplifies",
	"has_domain_region", "has_domain_topic", "holo_location", "holo_member",
	"holo_part", "holo_portion", "holo_substance", "holonym", "hypernym",
	"hyponym", "in_manner", "instance_hypernym", "instance_hyponym",
	"instrument", "involved", "involved_agent", "involved_direction",
	"involved_instrument", "involved_location", "involved_patient",
	"involved_result", "involved_source_direction",
	"involved_target_direction", "is_caused_by", "is_entailed_by",
	"is_exemplified_by", "is_subevent_of", "location", "manner_of",
	"mero_location", "mero_member", "mero_part", "mero_portion",
	"mero_substance", "meronym", "other", "patient", "restricted_by",
	"restricts", "result", "role", "similar", "source_direction",
	"state_of", "subevent", "target_direction",
)

// SenseRelationNames is the closed vocabulary of sense-to-sense relation
// types.
var SenseRelationNames = set(
	"also", "antonym", "derivation", "domain_region", "domain_topic",
	"exemplifies", "has_domain_region", "has_domain_topic",
	"is_exemplified_by", "other", "participle", "pertainym",
	"secondary_aspect_ip", "secondary_aspect_pi", "similar",
	"simple_aspect_ip", "simple_aspect_pi",
)

// SenseSynsetRelationNames is the closed vocabulary of sense-to-synset
// relation types.
var SenseSynsetRelationNames = set(
	"domain_region", "domain_topic", "exemplifies", "other",
)
