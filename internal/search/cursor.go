package search

import (
	"encoding/base64"
	"encoding/json"
)

// Cursor tokens are the engine's "last sort values" tuple, serialized as JSON
// and base64url-encoded so clients can round-trip them without reading them.

// EncodeCursor turns a sort-value tuple into an opaque continuation token.
// A nil or empty tuple has no continuation and encodes to "".
func EncodeCursor(sortValues []any) string {
	if len(sortValues) == 0 {
		return ""
	}
	raw, err := json.Marshal(sortValues)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor reverses EncodeCursor. Malformed tokens fail open: any
// undecodable input returns nil, which callers treat as "start from the
// beginning". Clients are never told a cursor was bad.
func DecodeCursor(token string) []any {
	if token == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil
	}
	var sortValues []any
	if err := json.Unmarshal(raw, &sortValues); err != nil {
		return nil
	}
	if len(sortValues) == 0 {
		return nil
	}
	return sortValues
}
