// Package gqlclient is a minimal client for GraphQL over HTTP.
//
// A Client is bound to one endpoint and sends every operation as a POST
// with a JSON body of the conventional {"query": ..., "variables": ...}
// shape. Responses are decoded into a caller-chosen data type using the
// generic Query and QueryWithVars functions:
//
//	type CountriesData struct {
//		Countries []struct {
//			Name string `json:"name"`
//		} `json:"countries"`
//	}
//
//	client := gqlclient.New("https://countries.trevorblades.com")
//	data, err := gqlclient.Query[CountriesData](ctx, client, `{ countries { name } }`)
//
// Every failure surfaces as a *GraphQLError with a fixed top-level message
// identifying what went wrong:
//
//   - the server answered with a conventional {"data", "errors"} object
//     carrying errors: the entries are kept and the message directs the
//     caller to them ("Look at json field for more details")
//   - the server answered with valid JSON of some other shape: the raw
//     value is kept ("Couldn't parse the result.")
//   - the body was not JSON at all, or reading it failed ("Failed to parse
//     response")
//   - the request never produced a response: the transport error's own
//     message is used
//
// A response with neither data nor errors wraps ErrMissingData, which
// errors.Is can detect.
//
// HTTP status codes are never inspected and no retries or timeouts are
// applied; deadline, proxy and TLS policy belong to the http.Client
// supplied via WithHTTPClient and to the caller's context.
//
// A Client is immutable after construction and safe for concurrent use.
package gqlclient
