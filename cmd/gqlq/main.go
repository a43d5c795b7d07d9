// Package main is the entry point for gqlq, a command line GraphQL client.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/gqlkit/gqlclient"
	"github.com/gqlkit/gqlclient/internal/config"
	"github.com/sirupsen/logrus"
)

// headerFlags collects repeated -header flags in "Name: value" form.
type headerFlags map[string]string

var _ flag.Value = headerFlags(nil)

func (h headerFlags) String() string {
	pairs := make([]string, 0, len(h))
	for name, value := range h {
		pairs = append(pairs, name+": "+value)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "; ")
}

func (h headerFlags) Set(value string) error {
	name, val, ok := strings.Cut(value, ":")
	if !ok || strings.TrimSpace(name) == "" {
		return fmt.Errorf("header must be in 'Name: value' form, got %q", value)
	}
	h[strings.TrimSpace(name)] = strings.TrimSpace(val)
	return nil
}

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		endpoint   = flag.String("endpoint", "", "GraphQL endpoint URL (overrides config)")
		query      = flag.String("query", "", "GraphQL query or mutation text")
		queryFile  = flag.String("query-file", "", "read the query from a file, or - for stdin")
		varsJSON   = flag.String("vars", "", "operation variables as a JSON object")
		timeout    = flag.Int("timeout", -1, "HTTP timeout in seconds, 0 disables (overrides config)")
		auditPath  = flag.String("audit", "", "append a JSON line per call to this file (overrides config)")
		verbose    = flag.Bool("verbose", false, "enable debug logging to stderr")
	)
	headers := make(headerFlags)
	flag.Var(headers, "header", "request header in 'Name: value' form, repeatable")
	flag.Parse()

	log.SetFlags(0)

	cfg := loadConfig(*configPath)
	config.ApplyEnvOverrides(cfg)
	applyFlagOverrides(cfg, *endpoint, headers, *timeout, *auditPath, *verbose)

	if cfg.Endpoint.URL == "" {
		log.Fatal("no endpoint: set -endpoint, GQLQ_ENDPOINT or endpoint.url in the config file")
	}

	queryText, err := resolveQuery(*query, *queryFile)
	if err != nil {
		log.Fatalf("read query: %v", err)
	}

	client, closeAudit, err := buildClient(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer closeAudit()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	data, err := run(ctx, client, queryText, *varsJSON)
	if err != nil {
		closeAudit()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		os.Stdout.Write(data)
		fmt.Println()
		return
	}
	fmt.Println(out.String())
}

// run executes the query, decoding the data payload verbatim so callers see
// exactly what the server returned.
func run(ctx context.Context, client *gqlclient.Client, query, varsJSON string) (json.RawMessage, error) {
	if varsJSON == "" {
		return gqlclient.Query[json.RawMessage](ctx, client, query)
	}
	vars := json.RawMessage(varsJSON)
	if !json.Valid(vars) {
		return nil, fmt.Errorf("-vars is not valid JSON: %s", varsJSON)
	}
	return gqlclient.QueryWithVars[json.RawMessage](ctx, client, query, vars)
}

// buildClient assembles the client from the resolved configuration. The
// returned closer releases the audit log file, if one was opened.
func buildClient(cfg *config.Config) (*gqlclient.Client, func(), error) {
	var opts []gqlclient.Option

	if cfg.Endpoint.Timeout > 0 {
		opts = append(opts, gqlclient.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Endpoint.Timeout) * time.Second,
		}))
	}

	if cfg.Verbose {
		logger := logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logrus.DebugLevel)
		opts = append(opts, gqlclient.WithLogger(logger))
	}

	closeAudit := func() {}
	if cfg.Audit.Enabled && cfg.Audit.LogPath != "" {
		f, err := os.OpenFile(cfg.Audit.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			log.Printf("warning: could not open audit log %q: %v; audit logging disabled", cfg.Audit.LogPath, err)
		} else {
			opts = append(opts, gqlclient.WithAuditLogger(gqlclient.NewAuditLogger(f)))
			closeAudit = func() { _ = f.Close() }
		}
	}

	if len(cfg.Endpoint.Headers) > 0 {
		client, err := gqlclient.NewWithHeaders(cfg.Endpoint.URL, cfg.Endpoint.Headers, opts...)
		if err != nil {
			closeAudit()
			return nil, nil, err
		}
		return client, closeAudit, nil
	}
	return gqlclient.New(cfg.Endpoint.URL, opts...), closeAudit, nil
}

// resolveQuery returns the operation text from -query or -query-file, where
// "-" reads standard input.
func resolveQuery(query, queryFile string) (string, error) {
	switch {
	case query != "" && queryFile != "":
		return "", fmt.Errorf("use either -query or -query-file, not both")
	case query != "":
		return query, nil
	case queryFile == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case queryFile != "":
		data, err := os.ReadFile(queryFile)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", fmt.Errorf("no query: set -query or -query-file")
}

// applyFlagOverrides layers command line values over the file and
// environment configuration. Flags win.
func applyFlagOverrides(cfg *config.Config, endpoint string, headers headerFlags, timeout int, auditPath string, verbose bool) {
	if endpoint != "" {
		cfg.Endpoint.URL = endpoint
	}
	if len(headers) > 0 {
		if cfg.Endpoint.Headers == nil {
			cfg.Endpoint.Headers = make(map[string]string, len(headers))
		}
		for name, value := range headers {
			cfg.Endpoint.Headers[name] = value
		}
	}
	if timeout >= 0 {
		cfg.Endpoint.Timeout = timeout
	}
	if auditPath != "" {
		cfg.Audit.Enabled = true
		cfg.Audit.LogPath = auditPath
	}
	if verbose {
		cfg.Verbose = true
	}
}

// loadConfig reads the file at path, or returns defaults when no path is
// given. An explicit path that cannot be loaded is fatal.
func loadConfig(path string) *config.Config {
	if path == "" {
		return config.DefaultConfig()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return cfg
}
