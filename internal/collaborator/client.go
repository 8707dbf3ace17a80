// Package collaborator talks to the user directory and user profile
// services over HTTP.
package collaborator

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/revisit-app/decks-service/internal/domain"
)

const maxErrorBody = 4 << 10

// base holds what both clients share: the HTTP client, the service base URL
// and the optional token signer.
type base struct {
	httpClient *http.Client
	baseURL    string
	signer     *TokenSigner
	service    string
}

func newBase(httpClient *http.Client, baseURL, service string, signer *TokenSigner) base {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return base{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		signer:     signer,
		service:    service,
	}
}

// do sends the request and returns the response for 2xx statuses. Non-2xx
// responses are drained, closed and reported as *domain.UpstreamStatusError.
func (b base) do(ctx context.Context, method, path string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	token, err := b.signer.Sign()
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", b.service, method, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return nil, &domain.UpstreamStatusError{Service: b.service, Method: method, StatusCode: resp.StatusCode}
	}
	return resp, nil
}
