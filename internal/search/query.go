package search

import "strconv"

// Strategy names the editorial constants behind the search ranking so weight
// changes are auditable instead of buried in an inline query body. The
// ranking layers three decisions: fuzzy text relevance across title, concept
// labels and summary; a hard 30-day recency window with a Gaussian decay
// inside it; and a log1p popularity factor from the social score.
type Strategy struct {
	Name string

	TitleWeight   float64
	ConceptWeight float64
	SummaryWeight float64

	PhraseConceptWeight float64
	PhraseSummaryWeight float64
	PhraseBoost         float64

	RecencyWindow string
	DecayScale    string
	DecayOffset   string
	DecayFactor   float64

	PopularityField  string
	PopularityFactor float64

	ScoreMode string
	BoostMode string
	Size      int
}

// StandardV1 is the canonical ranking strategy. Earlier revisions of the
// service drifted between cross_fields/most_fields matching and sum/multiply
// boost combination; this is the pinned version.
var StandardV1 = Strategy{
	Name: "standard-v1",

	TitleWeight:   2.5,
	ConceptWeight: 2.5,
	SummaryWeight: 1,

	PhraseConceptWeight: 2,
	PhraseSummaryWeight: 1,
	PhraseBoost:         2,

	RecencyWindow: "now-30d/d",
	DecayScale:    "10d",
	DecayOffset:   "2d",
	DecayFactor:   0.5,

	PopularityField:  "socialScore",
	PopularityFactor: 0.1,

	ScoreMode: "sum",
	BoostMode: "multiply",
	Size:      100,
}

// BuildSearchQuery produces the engine query body for a free-text search
// using StandardV1. The query string is passed to the engine as-is; a string
// the engine cannot parse surfaces as a search failure, not a local one.
func BuildSearchQuery(query string) map[string]any {
	return StandardV1.Build(query)
}

// Build constructs the function_score body for this strategy.
func (s Strategy) Build(query string) map[string]any {
	if query == "" {
		query = "*"
	}
	return map[string]any{
		"query": map[string]any{
			"function_score": map[string]any{
				"query": map[string]any{
					"bool": map[string]any{
						"must": []any{
							map[string]any{
								"multi_match": map[string]any{
									"query": query,
									"fields": []string{
										weighted("title.eng", s.TitleWeight),
										weighted("summary.eng", s.SummaryWeight),
										weighted("concepts.label.eng", s.ConceptWeight),
									},
									"type":      "most_fields",
									"fuzziness": "AUTO",
								},
							},
						},
						"should": []any{
							map[string]any{
								"multi_match": map[string]any{
									"query": query,
									"fields": []string{
										weighted("concepts.label.eng", s.PhraseConceptWeight),
										weighted("summary.eng", s.PhraseSummaryWeight),
									},
									"type":  "phrase",
									"boost": s.PhraseBoost,
								},
							},
						},
						"filter": []any{
							map[string]any{
								"range": map[string]any{
									"eventDate": map[string]any{"gte": s.RecencyWindow},
								},
							},
						},
					},
				},
				"functions": []any{
					map[string]any{
						"gauss": map[string]any{
							"eventDate": map[string]any{
								"origin": "now",
								"scale":  s.DecayScale,
								"offset": s.DecayOffset,
								"decay":  s.DecayFactor,
							},
						},
					},
					map[string]any{
						"field_value_factor": map[string]any{
							"field":    s.PopularityField,
							"modifier": "log1p",
							"factor":   s.PopularityFactor,
							"missing":  0,
						},
					},
				},
				"score_mode": s.ScoreMode,
				"boost_mode": s.BoostMode,
			},
		},
		"size": s.Size,
	}
}

func weighted(field string, weight float64) string {
	return field + "^" + strconv.FormatFloat(weight, 'f', -1, 64)
}
