package events

import "sort"

// MatchKind tells which catalog field produced a Match.
type MatchKind string

const (
	ExactName   MatchKind = "exact_name"
	ExactChoice MatchKind = "exact_choice"
	PartialName MatchKind = "partial_name"
)

// MaxResults bounds the length of a ranked result.
const MaxResults = 5

// Match associates a query with one field of one event.
type Match struct {
	Event       Event     `json:"event"`
	Confidence  float64   `json:"match_confidence"`
	Kind        MatchKind `json:"match_type"`
	MatchedText string    `json:"matched_text"`
}

// Match scores query against every event name and choice text in catalog
// order and returns the ranked candidates (see Rank). Per event the name is
// scored first, then its choices; a name that missed the whole-string bar gets
// a last chance through PartialScore. Choice texts never do. An empty result
// is not an error.
func (c *Catalog) Match(query string) []Match {
	q := Normalize(query)
	if q == "" || c.Len() == 0 {
		return []Match{}
	}
	var found []Match
	for _, ent := range c.entries {
		nameScore := Similarity(ent.name, q)
		if nameScore >= WholeMatchThreshold {
			found = append(found, newMatch(ent.event, nameScore, ExactName, ent.event.Name))
		}
		for i, ch := range ent.choices {
			if s := Similarity(ch, q); s >= WholeMatchThreshold {
				found = append(found, newMatch(ent.event, s, ExactChoice, ent.event.Choices[i].Text))
			}
		}
		if nameScore < WholeMatchThreshold {
			if p := PartialScore(ent.name, q); p >= PartialAcceptThreshold {
				found = append(found, newMatch(ent.event, p, PartialName, ent.event.Name))
			}
		}
	}
	return Rank(found)
}

// Rank orders ms by descending confidence and keeps the first MaxResults.
// Equal confidences keep their input order, which for Catalog.Match is
// catalog order.
func Rank(ms []Match) []Match {
	idx := make([]int, len(ms))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		ca, cb := ms[idx[a]].Confidence, ms[idx[b]].Confidence
		if ca != cb {
			return ca > cb
		}
		return idx[a] < idx[b]
	})
	n := min(len(idx), MaxResults)
	out := make([]Match, n)
	for i := 0; i < n; i++ {
		out[i] = ms[idx[i]]
	}
	return out
}

func newMatch(e Event, conf float64, kind MatchKind, text string) Match {
	return Match{Event: copyEvent(e), Confidence: conf, Kind: kind, MatchedText: text}
}
