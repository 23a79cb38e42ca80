// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the provider adapters.
// Every call is a single attempt: there is no retry or backoff.
package httputil

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

// maxErrorBody caps how much of a non-2xx body is kept for the error message.
const maxErrorBody = 512

// Doer is the minimal HTTP client interface used by the adapters.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError reports a non-2xx provider response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return "http " + http.StatusText(e.StatusCode)
	}
	return "http " + http.StatusText(e.StatusCode) + ": " + e.Body
}

// NewRequest builds a GET request with the given User-Agent and Accept
// headers.
func NewRequest(ctx context.Context, rawURL, userAgent, accept string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return req, nil
}

// Do executes req once. A transport failure or a status outside 2xx is
// returned as an error; on success the caller owns the response body.
func Do(client Doer, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", req.URL.Host)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, errors.WithStack(&StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(b)),
		})
	}
	return resp, nil
}

// GetJSON executes req once and decodes a JSON body into v.
func GetJSON(client Doer, req *http.Request, v any) error {
	resp, err := Do(client, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrap(err, "decoding JSON response")
	}
	return nil
}

// GetXML executes req once and decodes an XML body into v.
func GetXML(client Doer, req *http.Request, v any) error {
	resp, err := Do(client, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := xml.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrap(err, "decoding XML response")
	}
	return nil
}
