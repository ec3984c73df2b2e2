package search

import (
	"encoding/json"
	"strings"
	"testing"
)

func buildJSON(t *testing.T, query string) string {
	t.Helper()
	raw, err := json.Marshal(BuildSearchQuery(query))
	if err != nil {
		t.Fatalf("marshal query body: %v", err)
	}
	return string(raw)
}

func TestBuildSearchQueryStandardV1(t *testing.T) {
	body := buildJSON(t, "wildfire")

	// Field weighting
	for _, want := range []string{
		`"title.eng^2.5"`,
		`"summary.eng^1"`,
		`"concepts.label.eng^2.5"`,
		`"most_fields"`,
		`"fuzziness":"AUTO"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("query body missing %s", want)
		}
	}

	// Recency filter and decay
	for _, want := range []string{
		`"gte":"now-30d/d"`,
		`"scale":"10d"`,
		`"offset":"2d"`,
		`"decay":0.5`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("query body missing %s", want)
		}
	}

	// Popularity boost and combination mode
	for _, want := range []string{
		`"field":"socialScore"`,
		`"modifier":"log1p"`,
		`"score_mode":"sum"`,
		`"boost_mode":"multiply"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("query body missing %s", want)
		}
	}

	if !strings.Contains(body, `"size":100`) {
		t.Error("query body missing fixed result cap")
	}
}

func TestBuildSearchQueryDefaultsToMatchAll(t *testing.T) {
	body := buildJSON(t, "")
	if !strings.Contains(body, `"query":"*"`) {
		t.Error("empty query should fall back to *")
	}
}

func TestBuildSearchQueryPassesStringThrough(t *testing.T) {
	// Engine-reserved syntax is not sanitized locally; a rejection surfaces
	// as a search failure.
	body := buildJSON(t, `AND OR "unclosed`)
	if !strings.Contains(body, `AND OR`) {
		t.Error("query string should be passed to the engine verbatim")
	}
}
