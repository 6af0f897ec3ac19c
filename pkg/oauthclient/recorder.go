package oauthclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// maxBodySize matches the limit x/oauth2 applies to token responses.
const maxBodySize = 1 << 20

// recorder is an http.RoundTripper that keeps a copy of the last response
// and its body so the raw token response can be handed to the provider after
// x/oauth2 has parsed it. One recorder serves a single token request.
type recorder struct {
	base http.RoundTripper

	mu   sync.Mutex
	resp *http.Response
	body []byte
}

func newRecorder(client *http.Client) (*recorder, *http.Client) {
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	rec := &recorder{base: base}
	return rec, &http.Client{
		Transport:     rec,
		CheckRedirect: client.CheckRedirect,
		Jar:           client.Jar,
		Timeout:       client.Timeout,
	}
}

func (r *recorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := r.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	// Keep the status line and headers; the body is held separately.
	snapshot := *resp
	snapshot.Body = http.NoBody
	r.mu.Lock()
	r.resp = &snapshot
	r.body = body
	r.mu.Unlock()

	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

// last returns the recorded response, or nil when none arrived.
func (r *recorder) last() (*http.Response, []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resp, r.body
}

// withClient returns ctx carrying client for x/oauth2 to use.
func withClient(ctx context.Context, client *http.Client) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, client)
}
