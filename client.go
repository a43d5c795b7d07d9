package gqlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http/httpguts"
)

// Client issues GraphQL operations against a single HTTP endpoint. It holds
// only immutable configuration after construction, so a single Client is
// safe for concurrent use by multiple goroutines as long as the underlying
// http.Client is.
type Client struct {
	endpoint string
	headers  http.Header
	http     *http.Client
	logger   logrus.FieldLogger
	audit    *AuditLogger
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithHTTPClient sets the http.Client used to execute requests. This is the
// place for timeout, proxy, TLS and connection-pool policy; the GraphQL
// client itself imposes none. A nil client leaves the default in place.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for debug output. By default all output
// is discarded, keeping the client silent inside applications that do not
// opt in.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAuditLogger enables the JSON-lines call log. A nil logger leaves
// auditing disabled.
func WithAuditLogger(audit *AuditLogger) Option {
	return func(c *Client) {
		c.audit = audit
	}
}

// New returns a Client for the given endpoint with no default headers.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		headers:  make(http.Header),
		http:     http.DefaultClient,
		logger:   newDiscardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewWithHeaders returns a Client that sends the given headers on every
// request. Each header name and value is validated against the HTTP wire
// format rules up front, so a bad entry fails construction instead of
// surfacing on the first call: header sets are normally static
// configuration known at startup, not derived from untrusted input. Header
// names are stored canonicalized, making lookups case-insensitive.
func NewWithHeaders(endpoint string, headers map[string]string, opts ...Option) (*Client, error) {
	c := New(endpoint, opts...)
	for name, value := range headers {
		if !httpguts.ValidHeaderFieldName(name) {
			return nil, errors.Errorf("gqlclient: invalid header name %q", name)
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return nil, errors.Errorf("gqlclient: invalid value for header %q", name)
		}
		c.headers.Set(name, value)
	}
	return c, nil
}

// requestBody is the JSON body shape for a GraphQL HTTP request. Variables
// are always present, serialized as null when the operation has none.
type requestBody struct {
	Query     string `json:"query"`
	Variables any    `json:"variables"`
}

// Audit outcome labels, one per terminal state of a call.
const (
	outcomeSuccess        = "success"
	outcomeTransport      = "transport_error"
	outcomeGraphQL        = "graphql_error"
	outcomeUnconventional = "unconventional_response"
	outcomeParse          = "parse_error"
	outcomeMissingData    = "missing_data"
)

// Query executes a GraphQL operation that takes no variables and decodes
// the response data into K:
//
//	data, err := gqlclient.Query[CountriesData](ctx, client, query)
//
// The request carries "variables": null, which servers treat as an absent
// variable set. Mutations use the same request shape as queries, so passing
// mutation text here works as well.
func Query[K any](ctx context.Context, c *Client, query string) (K, error) {
	return QueryWithVars[K, any](ctx, c, query, nil)
}

// QueryWithVars executes a GraphQL operation with the given variables and
// decodes the response data into K. V may be any JSON-serializable value,
// conventionally a struct or a map keyed by variable name.
//
// The call makes a single attempt: no retries, and no timeout beyond what
// the configured http.Client and ctx impose. Every failure is returned as a
// *GraphQLError carrying one of the classifications described in the
// package documentation.
func QueryWithVars[K, V any](ctx context.Context, c *Client, query string, variables V) (K, error) {
	var zero K
	start := time.Now()

	body, err := json.Marshal(requestBody{Query: query, Variables: variables})
	if err != nil {
		c.record(start, query, outcomeTransport)
		return zero, errorFromTransport(errors.Wrap(err, "marshal request body"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		c.record(start, query, outcomeTransport)
		return zero, errorFromTransport(errors.Wrap(err, "create request"))
	}

	req.Header.Set("Content-Type", "application/json")
	// Configured headers are applied last so a caller-supplied Content-Type
	// wins over the default.
	for name := range c.headers {
		req.Header.Set(name, c.headers.Get(name))
	}

	c.logger.WithFields(logrus.Fields{
		"endpoint": c.endpoint,
		"bytes":    len(body),
	}).Debug("sending graphql request")

	resp, err := c.http.Do(req)
	if err != nil {
		c.record(start, query, outcomeTransport)
		return zero, errorFromTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	// The status code is deliberately not inspected: non-2xx handling is
	// the HTTP capability's concern, and GraphQL servers routinely attach
	// conventional error payloads to 4xx/5xx responses.
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.record(start, query, outcomeParse)
		return zero, &GraphQLError{message: messageParseFailed, cause: err}
	}

	var parsed response[K]
	if err := json.Unmarshal(raw, &parsed); err != nil {
		c.record(start, query, outcomeParse)
		return zero, &GraphQLError{message: messageParseFailed, cause: err}
	}

	switch {
	case parsed.raw != nil:
		c.record(start, query, outcomeUnconventional)
		return zero, &GraphQLError{
			message: messageUnconventional,
			json:    []GraphQLErrorMessage{{Raw: parsed.raw}},
		}
	case parsed.conventional.Errors != nil:
		c.record(start, query, outcomeGraphQL)
		return zero, ErrorFromList(*parsed.conventional.Errors)
	case parsed.conventional.Data == nil:
		c.record(start, query, outcomeMissingData)
		return zero, &GraphQLError{message: ErrMissingData.Error(), cause: ErrMissingData}
	}

	c.record(start, query, outcomeSuccess)
	return *parsed.conventional.Data, nil
}

// record writes the call outcome to the debug log and, when configured, to
// the audit log. Audit write failures are not allowed to fail the call.
func (c *Client) record(start time.Time, query, outcome string) {
	c.logger.WithFields(logrus.Fields{
		"endpoint": c.endpoint,
		"outcome":  outcome,
		"duration": time.Since(start),
	}).Debug("graphql call finished")

	if c.audit == nil {
		return
	}
	_ = c.audit.Log(AuditEntry{
		Timestamp: start,
		Endpoint:  c.endpoint,
		Query:     query,
		Outcome:   outcome,
		Duration:  time.Since(start),
	})
}

// newDiscardLogger returns a logger whose output is discarded.
func newDiscardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
