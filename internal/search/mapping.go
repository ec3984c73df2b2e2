package search

// eventMapping is the fixed schema for the events index. Coordinates are
// floats, so documents must never carry string lat/long values (the models
// package nulls anything unparsable before indexing).
var eventMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"uri":               map[string]any{"type": "keyword"},
			"totalArticleCount": map[string]any{"type": "integer"},
			"articleCounts": map[string]any{
				"properties": map[string]any{
					"eng": map[string]any{"type": "integer"},
				},
			},
			"concepts": map[string]any{
				"properties": map[string]any{
					"type":     map[string]any{"type": "keyword"},
					"label":    engText(),
					"location": locationMapping(),
				},
			},
			"categories": map[string]any{
				"properties": map[string]any{
					"uri":   map[string]any{"type": "keyword"},
					"label": map[string]any{"type": "text"},
				},
			},
			"title":       engText(),
			"summary":     engText(),
			"eventDate":   map[string]any{"type": "date"},
			"sentiment":   map[string]any{"type": "float"},
			"socialScore": map[string]any{"type": "float"},
			"wgt":         map[string]any{"type": "integer"},
			"images":      map[string]any{"type": "keyword"},
			"location":    locationMapping(),
			"infoArticle": map[string]any{
				"properties": map[string]any{
					"eng": map[string]any{
						"properties": map[string]any{
							"url": map[string]any{"type": "keyword"},
						},
					},
				},
			},
		},
	},
}

func engText() map[string]any {
	return map[string]any{
		"properties": map[string]any{
			"eng": map[string]any{"type": "text"},
		},
	}
}

func locationMapping() map[string]any {
	return map[string]any{
		"properties": map[string]any{
			"label": engText(),
			"lat":   map[string]any{"type": "float"},
			"long":  map[string]any{"type": "float"},
			"country": map[string]any{
				"properties": map[string]any{
					"label": engText(),
					"lat":   map[string]any{"type": "float"},
					"long":  map[string]any{"type": "float"},
				},
			},
		},
	}
}
