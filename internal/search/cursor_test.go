package search

import (
	"reflect"
	"testing"
)

func TestCursorRoundTrip(t *testing.T) {
	sortValues := []any{842.5, float64(1714003200000)}

	token := EncodeCursor(sortValues)
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	decoded := DecodeCursor(token)
	if !reflect.DeepEqual(decoded, sortValues) {
		t.Fatalf("round trip mismatch: got %v, want %v", decoded, sortValues)
	}
}

func TestEncodeCursorEmpty(t *testing.T) {
	if got := EncodeCursor(nil); got != "" {
		t.Fatalf("expected empty token for nil tuple, got %q", got)
	}
	if got := EncodeCursor([]any{}); got != "" {
		t.Fatalf("expected empty token for empty tuple, got %q", got)
	}
}

func TestDecodeCursorFailsOpen(t *testing.T) {
	// Corrupted or hostile tokens must restart the listing, never crash or
	// surface an error to the client.
	cases := []string{
		"",
		"not base64 at all!!!",
		"AAAA",               // valid base64, not JSON
		"bnVsbA",             // "null"
		"e30",                // "{}"
		"W10",                // "[]"
		"ltZW9",              // truncated
		"====",
		"%%%",
	}
	for _, token := range cases {
		if got := DecodeCursor(token); got != nil {
			t.Errorf("DecodeCursor(%q) = %v, want nil", token, got)
		}
	}
}
