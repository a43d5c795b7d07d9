package gqlclient

import "encoding/json"

// response is the tagged union over the two payload shapes a GraphQL server
// may return. UnmarshalJSON tries the conventional shape first because it
// matches the GraphQL specification; anything that does not fit (wrong field
// types, a bare array, a scalar, null) is captured verbatim as the
// unconventional branch. Exactly one branch is populated per response, and
// the union itself never fails on valid JSON.
type response[K any] struct {
	conventional *conventionalResponse[K]
	raw          json.RawMessage
}

// conventionalResponse is the specification shape: an object with optional
// data and optional errors. Pointer fields distinguish an absent or null
// field from one that is present but empty, which matters for errors: a
// present-but-empty list still means the server reported failure.
type conventionalResponse[K any] struct {
	Data   *K                     `json:"data"`
	Errors *[]GraphQLErrorMessage `json:"errors"`
}

func (r *response[K]) UnmarshalJSON(data []byte) error {
	// Only objects can match the conventional shape. The explicit check
	// keeps a bare null from decoding as an empty conventional response.
	if isJSONObject(data) {
		var conv conventionalResponse[K]
		if err := json.Unmarshal(data, &conv); err == nil {
			r.conventional = &conv
			r.raw = nil
			return nil
		}
	}

	r.conventional = nil
	r.raw = append(json.RawMessage(nil), data...)
	return nil
}

// isJSONObject reports whether the first non-whitespace byte opens a JSON
// object.
func isJSONObject(data []byte) bool {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			return b == '{'
		}
	}
	return false
}
