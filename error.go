package gqlclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Fixed summary messages for the failure classes that carry no free-form
// text. The structured detail, when present, lives in GraphQLError.JSON.
const (
	messageErrorList      = "Look at json field for more details"
	messageUnconventional = "Couldn't parse the result."
	messageParseFailed    = "Failed to parse response"
)

var (
	_ error            = (*GraphQLError)(nil)
	_ json.Marshaler   = GraphQLErrorMessage{}
	_ json.Unmarshaler = (*GraphQLErrorMessage)(nil)
	_ json.Marshaler   = GraphQLErrorPathParam{}
	_ json.Unmarshaler = (*GraphQLErrorPathParam)(nil)
)

// ErrMissingData reports a response in which the server claimed success
// (no errors) but supplied no data either. The GraphQL specification does
// not allow this shape, so it is surfaced as a distinct error rather than
// treated as an empty result. Test with errors.Is.
var ErrMissingData = errors.New("no data and no errors in response")

// GraphQLError is the error type surfaced by Query and QueryWithVars. It
// carries a short human-readable message and, when the server returned a
// GraphQL error payload, the structured error list. Keeping the two apart
// lets callers branch on structured detail without parsing strings while
// the message stays safe to log.
type GraphQLError struct {
	message string
	json    []GraphQLErrorMessage
	cause   error
}

// ErrorFromString returns a GraphQLError that carries only a message, with
// no structured detail. It is used for failures that happen before a
// GraphQL error payload could exist: transport failures and unparseable
// responses.
func ErrorFromString(text string) *GraphQLError {
	return &GraphQLError{message: text}
}

// ErrorFromList returns a GraphQLError wrapping the error list reported by
// the server. The message is a fixed summary; the list itself is available
// through JSON.
func ErrorFromList(list []GraphQLErrorMessage) *GraphQLError {
	return &GraphQLError{message: messageErrorList, json: list}
}

// errorFromTransport converts a transport-level failure (connection, DNS,
// TLS, cancellation) into a GraphQLError. The underlying error remains
// reachable through Unwrap.
func errorFromTransport(err error) *GraphQLError {
	return &GraphQLError{message: err.Error(), cause: err}
}

// Message returns the short human-readable summary of the error.
func (e *GraphQLError) Message() string {
	return e.message
}

// JSON returns the structured error list reported by the server, or nil
// when the failure produced no GraphQL error payload. The returned slice
// must be treated as read-only.
func (e *GraphQLError) JSON() []GraphQLErrorMessage {
	return e.json
}

// Unwrap returns the underlying transport or decode error, if any, so that
// the standard errors.Is and errors.As helpers compose with GraphQLError.
func (e *GraphQLError) Unwrap() error {
	return e.cause
}

// Error renders a multi-line report: the first line is the summary, and
// each structured error contributes one "Message:" line. The same rendering
// serves display and debug output.
func (e *GraphQLError) Error() string {
	var b strings.Builder
	b.WriteString("GQLClient Error: ")
	b.WriteString(e.message)
	for i := range e.json {
		b.WriteString("\nMessage: ")
		b.WriteString(e.json[i].text())
	}
	return b.String()
}

// GraphQLErrorMessage is a single entry of a server error payload. Servers
// that follow the GraphQL specification (https://spec.graphql.org/June2018/#sec-Errors)
// produce objects with a message and optional locations, extensions and
// path; anything else is retained verbatim in Raw. Exactly one of the two
// forms is populated, decided by UnmarshalJSON: the conventional shape is
// attempted first, and any value that does not match it (missing or
// non-string message, malformed locations or path) falls back to raw
// capture so no server output is ever lost.
type GraphQLErrorMessage struct {
	Message    string
	Locations  []GraphQLErrorLocation
	Extensions json.RawMessage
	Path       []GraphQLErrorPathParam

	// Raw holds the original JSON value when the entry does not follow the
	// conventional error shape. It is nil for conventional entries.
	Raw json.RawMessage
}

// GraphQLErrorLocation points at the position in the query document an
// error refers to. Lines and columns are 1-based.
type GraphQLErrorLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// GraphQLErrorPathParam is one segment of the path to the response field an
// error relates to: either a field name or a list index.
type GraphQLErrorPathParam struct {
	// Field holds the field name for named segments. It is empty when the
	// segment is an index.
	Field string
	// Index holds the list index for index segments.
	Index int
	// IsIndex reports whether the segment is a list index rather than a
	// field name.
	IsIndex bool
}

// Conventional reports whether the entry follows the GraphQL specification
// error shape. When it returns false only Raw is populated.
func (m *GraphQLErrorMessage) Conventional() bool {
	return m.Raw == nil
}

// text returns the message of a conventional entry, or the compact JSON
// text of an unconventional one. Used by GraphQLError.Error.
func (m *GraphQLErrorMessage) text() string {
	if m.Raw == nil {
		return m.Message
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, m.Raw); err != nil {
		return string(m.Raw)
	}
	return buf.String()
}

// UnmarshalJSON attempts the conventional error shape first and captures
// the raw value when the shape does not match.
func (m *GraphQLErrorMessage) UnmarshalJSON(data []byte) error {
	var conv struct {
		Message    *string                 `json:"message"`
		Locations  []GraphQLErrorLocation  `json:"locations"`
		Extensions json.RawMessage         `json:"extensions"`
		Path       []GraphQLErrorPathParam `json:"path"`
	}
	if err := json.Unmarshal(data, &conv); err == nil && conv.Message != nil {
		m.Message = *conv.Message
		m.Locations = conv.Locations
		m.Extensions = normalizeRaw(conv.Extensions)
		m.Path = conv.Path
		m.Raw = nil
		return nil
	}

	m.Message = ""
	m.Locations = nil
	m.Extensions = nil
	m.Path = nil
	m.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON is the inverse of UnmarshalJSON: conventional entries
// serialize as specification error objects, unconventional ones as their
// original value.
func (m GraphQLErrorMessage) MarshalJSON() ([]byte, error) {
	if m.Raw != nil {
		return m.Raw, nil
	}
	type conventional struct {
		Message    string                  `json:"message"`
		Locations  []GraphQLErrorLocation  `json:"locations,omitempty"`
		Extensions json.RawMessage         `json:"extensions,omitempty"`
		Path       []GraphQLErrorPathParam `json:"path,omitempty"`
	}
	return json.Marshal(conventional{
		Message:    m.Message,
		Locations:  m.Locations,
		Extensions: m.Extensions,
		Path:       m.Path,
	})
}

// UnmarshalJSON accepts a JSON string or a non-negative integer. Any other
// value is an error, which demotes the enclosing error message to its
// unconventional form.
func (p *GraphQLErrorPathParam) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = GraphQLErrorPathParam{Field: s}
		return nil
	}
	var n uint32
	if err := json.Unmarshal(data, &n); err == nil {
		*p = GraphQLErrorPathParam{Index: int(n), IsIndex: true}
		return nil
	}
	return fmt.Errorf("path segment %s is neither a field name nor a list index", string(data))
}

// MarshalJSON serializes the segment back to the form it was read from.
func (p GraphQLErrorPathParam) MarshalJSON() ([]byte, error) {
	if p.IsIndex {
		return json.Marshal(p.Index)
	}
	return json.Marshal(p.Field)
}

// String returns the field name or the decimal index.
func (p GraphQLErrorPathParam) String() string {
	if p.IsIndex {
		return strconv.Itoa(p.Index)
	}
	return p.Field
}

// normalizeRaw maps an absent or JSON-null raw value to nil so both read
// back as "not present".
func normalizeRaw(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	return raw
}
