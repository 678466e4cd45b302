package wlo

import "sort"

// Closed vocabularies: the metadata extractor is only allowed to emit
// labels from these tables, and only exact label hits add search filters.

// FachMapping maps a school-subject label to its edu-sharing taxon id.
var FachMapping = map[string]string{
	"Biologie":         "http://w3id.org/openeduhub/vocabs/discipline/080",
	"Chemie":           "http://w3id.org/openeduhub/vocabs/discipline/100",
	"Deutsch":          "http://w3id.org/openeduhub/vocabs/discipline/120",
	"Englisch":         "http://w3id.org/openeduhub/vocabs/discipline/20001",
	"Geografie":        "http://w3id.org/openeduhub/vocabs/discipline/220",
	"Geschichte":       "http://w3id.org/openeduhub/vocabs/discipline/240",
	"Informatik":       "http://w3id.org/openeduhub/vocabs/discipline/320",
	"Kunst":            "http://w3id.org/openeduhub/vocabs/discipline/060",
	"Mathematik":       "http://w3id.org/openeduhub/vocabs/discipline/380",
	"Musik":            "http://w3id.org/openeduhub/vocabs/discipline/420",
	"Physik":           "http://w3id.org/openeduhub/vocabs/discipline/460",
	"Politik":          "http://w3id.org/openeduhub/vocabs/discipline/480",
	"Religion":         "http://w3id.org/openeduhub/vocabs/discipline/520",
	"Sport":            "http://w3id.org/openeduhub/vocabs/discipline/600",
	"Wirtschaftskunde": "http://w3id.org/openeduhub/vocabs/discipline/700",
}

// InhaltstypMapping maps a content-type label to its aggregated
// learning-resource-type id.
var InhaltstypMapping = map[string]string{
	"Video":           "http://w3id.org/openeduhub/vocabs/lrt_aggregated/video",
	"Arbeitsblatt":    "http://w3id.org/openeduhub/vocabs/lrt_aggregated/worksheet",
	"Übung":           "http://w3id.org/openeduhub/vocabs/lrt_aggregated/exercise",
	"Unterrichtsidee": "http://w3id.org/openeduhub/vocabs/lrt_aggregated/lesson_idea",
	"Erklärung":       "http://w3id.org/openeduhub/vocabs/lrt_aggregated/explanation",
	"Lernspiel":       "http://w3id.org/openeduhub/vocabs/lrt_aggregated/learning_game",
	"Quiz":            "http://w3id.org/openeduhub/vocabs/lrt_aggregated/quiz",
	"Präsentation":    "http://w3id.org/openeduhub/vocabs/lrt_aggregated/presentation",
	"Text":            "http://w3id.org/openeduhub/vocabs/lrt_aggregated/text",
	"Interaktivität":  "http://w3id.org/openeduhub/vocabs/lrt_aggregated/interactive",
}

func SubjectLabels() []string {
	return sortedKeys(FachMapping)
}

func ContentTypeLabels() []string {
	return sortedKeys(InhaltstypMapping)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
