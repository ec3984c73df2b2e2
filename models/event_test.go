package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCoordDecodesNumbersAndNumericStrings(t *testing.T) {
	raw := `{
		"uri": "eng-1",
		"location": {"label": {"eng": "Lisbon"}, "lat": 38.72, "long": "-9.14"},
		"concepts": [
			{"type": "loc", "score": 90, "location": {"lat": "not-a-number", "long": null}}
		]
	}`

	var ev Event
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if ev.Location.Lat.Value == nil || *ev.Location.Lat.Value != 38.72 {
		t.Fatalf("numeric lat mangled: %v", ev.Location.Lat.Value)
	}
	if ev.Location.Long.Value == nil || *ev.Location.Long.Value != -9.14 {
		t.Fatalf("numeric-string long not coerced: %v", ev.Location.Long.Value)
	}

	loc := ev.Concepts[0].Location
	if loc.Lat.Value != nil {
		t.Fatalf("unparsable lat must become null, got %v", *loc.Lat.Value)
	}
	if loc.Long.Value != nil {
		t.Fatalf("null long must stay null, got %v", *loc.Long.Value)
	}
}

func TestCoordNeverReEmitsStrings(t *testing.T) {
	var ev Event
	if err := json.Unmarshal([]byte(`{"uri":"eng-2","location":{"lat":"41.1","long":"bogus"}}`), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	out, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(out)
	if strings.Contains(s, `"41.1"`) || strings.Contains(s, "bogus") {
		t.Fatalf("coordinates re-emitted as strings: %s", s)
	}
	if !strings.Contains(s, `"lat":41.1`) {
		t.Fatalf("parsable coordinate lost: %s", s)
	}
	if !strings.Contains(s, `"long":null`) {
		t.Fatalf("unparsable coordinate must serialize as null: %s", s)
	}
}
