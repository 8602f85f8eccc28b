// Copyright 2025 The Star Burger Authors
// SPDX-License-Identifier: Apache-2.0

// Package httputils provides the round trippers used by the geocoder clients.
package httputils

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"
)

// Query parameters that carry provider credentials.
var secretParams = []string{"apikey", "key"}

/////////////////////////////////////////
/// RoundTrippers

// LoggingRoundTripper dumps every request and response to Writer, with
// credentials in the query string masked.
type LoggingRoundTripper struct {
	Transport http.RoundTripper
	Writer    io.Writer
	DumpBody  bool
}

// abbreviate prefixes every line and bounds the size of the dump.
func abbreviate(lines []string, prefix rune) []string {
	const maxLines, maxChars = 256, 512

	if len(lines) > maxLines {
		lines = append(lines[:maxLines], "…")
	}

	for i, line := range lines {
		if len(line) > maxChars {
			line = line[:maxChars] + "…"
		}

		lines[i] = fmt.Sprintf("%c %s", prefix, line)
	}

	return lines
}

// RedactURL masks the values of credential query parameters.
func RedactURL(u *url.URL) string {
	query := u.Query()
	redacted := false

	for _, name := range secretParams {
		if query.Has(name) {
			query.Set(name, "REDACTED")

			redacted = true
		}
	}

	if !redacted {
		return u.String()
	}

	cp := *u
	cp.RawQuery = query.Encode()

	return cp.String()
}

func (t *LoggingRoundTripper) dumpRequest(req *http.Request) error {
	dump, err := httputil.DumpRequestOut(req, true)
	if err != nil {
		return fmt.Errorf("tracing HTTP request: %w", err)
	}

	text := string(dump)
	if req.URL.RawQuery != "" {
		text = strings.Replace(text, req.URL.RequestURI(), strings.TrimPrefix(RedactURL(req.URL), req.URL.Scheme+"://"+req.URL.Host), 1)
	}

	lines := abbreviate(strings.Split(text, "\n"), '>')
	_, err = fmt.Fprintln(t.Writer, strings.Join(lines, "\n"))

	return err
}

func (t *LoggingRoundTripper) dumpResponse(resp *http.Response, duration time.Duration) error {
	dump, err := httputil.DumpResponse(resp, t.DumpBody)
	if err != nil {
		return fmt.Errorf("tracing HTTP response: %w", err)
	}

	lines := abbreviate(strings.Split(string(dump), "\n"), '<')

	_, err = fmt.Fprintf(t.Writer, "< RESPONSE: [%v]\n%s\n", duration, strings.Join(lines, "\n"))

	return err
}

// RoundTrip implements the http.RoundTripper interface.
func (t *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Writer == nil {
		return t.Transport.RoundTrip(req)
	}

	if err := t.dumpRequest(req); err != nil {
		return nil, err
	}

	start := time.Now()

	resp, err := t.Transport.RoundTrip(req)
	if err != nil {
		fmt.Fprintf(t.Writer, "< ERROR: [%v] %v\n", time.Since(start), err)

		return nil, err
	}

	if err := t.dumpResponse(resp, time.Since(start)); err != nil {
		return nil, err
	}

	return resp, nil
}

// AppendRequestHeadersRoundTripper adds headers to the request.
type AppendRequestHeadersRoundTripper struct {
	Transport http.RoundTripper
	Headers   map[string]string
}

// RoundTrip implements the http.RoundTripper interface.
func (t *AppendRequestHeadersRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.Headers {
		req.Header.Set(k, v)
	}

	return t.Transport.RoundTrip(req)
}

// NewTransport stacks the round trippers used to talk to geocoding providers:
// a User-Agent header and, when trace is not nil, a dump of every exchange.
func NewTransport(base http.RoundTripper, userAgent string, trace io.Writer) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	if trace != nil {
		base = &LoggingRoundTripper{Transport: base, Writer: trace, DumpBody: true}
	}

	return &AppendRequestHeadersRoundTripper{
		Transport: base,
		Headers:   map[string]string{"User-Agent": userAgent},
	}
}
