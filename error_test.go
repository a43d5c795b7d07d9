package gqlclient

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// ---- constructors and accessors ----

func TestErrorFromString(t *testing.T) {
	err := ErrorFromString("something went wrong")
	if got, want := err.Message(), "something went wrong"; got != want {
		t.Errorf("Message() = %q, want %q", got, want)
	}
	if err.JSON() != nil {
		t.Errorf("JSON() = %v, want nil", err.JSON())
	}
	if err.Unwrap() != nil {
		t.Errorf("Unwrap() = %v, want nil", err.Unwrap())
	}
	if got, want := err.Error(), "GQLClient Error: something went wrong"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorFromList(t *testing.T) {
	list := []GraphQLErrorMessage{
		{Message: "first failure"},
		{Message: "second failure"},
	}
	err := ErrorFromList(list)
	if got, want := err.Message(), "Look at json field for more details"; got != want {
		t.Errorf("Message() = %q, want %q", got, want)
	}
	if got := err.JSON(); len(got) != 2 {
		t.Fatalf("JSON() returned %d entries, want 2", len(got))
	}
	want := "GQLClient Error: Look at json field for more details\n" +
		"Message: first failure\n" +
		"Message: second failure"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorFromListEmpty(t *testing.T) {
	err := ErrorFromList(nil)
	if got, want := err.Error(), "GQLClient Error: Look at json field for more details"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorFromTransport(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := errorFromTransport(cause)
	if got, want := err.Message(), cause.Error(); got != want {
		t.Errorf("Message() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestErrorRenderingUnconventionalEntry(t *testing.T) {
	err := ErrorFromList([]GraphQLErrorMessage{
		{Raw: json.RawMessage(`{ "code": 500 }`)},
	})
	want := "GQLClient Error: Look at json field for more details\n" +
		`Message: {"code":500}`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrMissingDataSentinel(t *testing.T) {
	err := &GraphQLError{message: ErrMissingData.Error(), cause: ErrMissingData}
	if !errors.Is(err, ErrMissingData) {
		t.Error("errors.Is(err, ErrMissingData) = false, want true")
	}
	var gqlErr *GraphQLError
	if !errors.As(err, &gqlErr) {
		t.Error("errors.As(err, &gqlErr) = false, want true")
	}
}

// ---- error message union ----

func TestGraphQLErrorMessageUnmarshal(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		conventional bool
		message      string
	}{
		{
			name:         "message only",
			input:        `{"message":"Cannot query field"}`,
			conventional: true,
			message:      "Cannot query field",
		},
		{
			name:         "full entry",
			input:        `{"message":"boom","locations":[{"line":1,"column":2}],"path":["user",0],"extensions":{"code":"BAD"}}`,
			conventional: true,
			message:      "boom",
		},
		{
			name:         "null message",
			input:        `{"message":null}`,
			conventional: false,
		},
		{
			name:         "missing message",
			input:        `{"code":500,"reason":"overloaded"}`,
			conventional: false,
		},
		{
			name:         "non-string message",
			input:        `{"message":42}`,
			conventional: false,
		},
		{
			name:         "malformed locations",
			input:        `{"message":"boom","locations":"nope"}`,
			conventional: false,
		},
		{
			name:         "negative path index",
			input:        `{"message":"boom","path":[-1]}`,
			conventional: false,
		},
		{
			name:         "fractional path index",
			input:        `{"message":"boom","path":[1.5]}`,
			conventional: false,
		},
		{
			name:         "bare string",
			input:        `"not an object"`,
			conventional: false,
		},
		{
			name:         "bare number",
			input:        `42`,
			conventional: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m GraphQLErrorMessage
			if err := json.Unmarshal([]byte(tt.input), &m); err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", tt.input, err)
			}
			if got := m.Conventional(); got != tt.conventional {
				t.Fatalf("Conventional() = %v, want %v", got, tt.conventional)
			}
			if tt.conventional {
				if m.Message != tt.message {
					t.Errorf("Message = %q, want %q", m.Message, tt.message)
				}
				if m.Raw != nil {
					t.Errorf("Raw = %s, want nil", m.Raw)
				}
			} else {
				if string(m.Raw) != tt.input {
					t.Errorf("Raw = %s, want %s", m.Raw, tt.input)
				}
			}
		})
	}
}

func TestGraphQLErrorMessageFields(t *testing.T) {
	input := `{
		"message": "Cannot query field \"namee\" on type \"Country\".",
		"locations": [{"line": 1, "column": 15}],
		"path": ["countries", 2, "name"],
		"extensions": {"code": "GRAPHQL_VALIDATION_FAILED"}
	}`
	var m GraphQLErrorMessage
	if err := json.Unmarshal([]byte(input), &m); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if len(m.Locations) != 1 || m.Locations[0].Line != 1 || m.Locations[0].Column != 15 {
		t.Errorf("Locations = %+v, want one entry at 1:15", m.Locations)
	}
	wantPath := []GraphQLErrorPathParam{
		{Field: "countries"},
		{Index: 2, IsIndex: true},
		{Field: "name"},
	}
	if len(m.Path) != len(wantPath) {
		t.Fatalf("Path has %d segments, want %d", len(m.Path), len(wantPath))
	}
	for i, want := range wantPath {
		if m.Path[i] != want {
			t.Errorf("Path[%d] = %+v, want %+v", i, m.Path[i], want)
		}
	}
	if !strings.Contains(string(m.Extensions), "GRAPHQL_VALIDATION_FAILED") {
		t.Errorf("Extensions = %s, want validation code retained", m.Extensions)
	}
}

func TestGraphQLErrorMessageNullExtensions(t *testing.T) {
	var m GraphQLErrorMessage
	if err := json.Unmarshal([]byte(`{"message":"boom","extensions":null}`), &m); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if !m.Conventional() {
		t.Fatal("Conventional() = false, want true")
	}
	if m.Extensions != nil {
		t.Errorf("Extensions = %s, want nil", m.Extensions)
	}
}

func TestGraphQLErrorMessageMarshal(t *testing.T) {
	tests := []struct {
		name string
		in   GraphQLErrorMessage
		want string
	}{
		{
			name: "conventional minimal",
			in:   GraphQLErrorMessage{Message: "boom"},
			want: `{"message":"boom"}`,
		},
		{
			name: "conventional with location and path",
			in: GraphQLErrorMessage{
				Message:   "boom",
				Locations: []GraphQLErrorLocation{{Line: 1, Column: 2}},
				Path:      []GraphQLErrorPathParam{{Field: "user"}, {Index: 3, IsIndex: true}},
			},
			want: `{"message":"boom","locations":[{"line":1,"column":2}],"path":["user",3]}`,
		},
		{
			name: "unconventional passthrough",
			in:   GraphQLErrorMessage{Raw: json.RawMessage(`["strange"]`)},
			want: `["strange"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.in)
			if err != nil {
				t.Fatalf("Marshal error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal = %s, want %s", got, tt.want)
			}
		})
	}
}

// ---- path segments ----

func TestGraphQLErrorPathParamUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    GraphQLErrorPathParam
		wantErr bool
	}{
		{name: "field name", input: `"user"`, want: GraphQLErrorPathParam{Field: "user"}},
		{name: "index", input: `7`, want: GraphQLErrorPathParam{Index: 7, IsIndex: true}},
		{name: "index zero", input: `0`, want: GraphQLErrorPathParam{Index: 0, IsIndex: true}},
		{name: "negative", input: `-1`, wantErr: true},
		{name: "fractional", input: `2.5`, wantErr: true},
		{name: "overflow", input: `4294967296`, wantErr: true},
		{name: "boolean", input: `true`, wantErr: true},
		{name: "object", input: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p GraphQLErrorPathParam
			err := json.Unmarshal([]byte(tt.input), &p)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Unmarshal(%s) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", tt.input, err)
			}
			if p != tt.want {
				t.Errorf("got %+v, want %+v", p, tt.want)
			}
		})
	}
}

func TestGraphQLErrorPathParamString(t *testing.T) {
	if got := (GraphQLErrorPathParam{Field: "user"}).String(); got != "user" {
		t.Errorf("String() = %q, want %q", got, "user")
	}
	if got := (GraphQLErrorPathParam{Index: 4, IsIndex: true}).String(); got != "4" {
		t.Errorf("String() = %q, want %q", got, "4")
	}
}
