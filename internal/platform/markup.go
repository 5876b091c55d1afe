package platform

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// setPageHeaders sets the headers a browser sends for a top-level navigation.
func (c *Client) setPageHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
}

// FetchMarkup fetches a web page through the session's cookie jar.
// Non-2xx responses are returned as *APIError.
func (c *Client) FetchMarkup(ctx context.Context, pageURL string) ([]byte, error) {
	if c.credential.SessionID == "" {
		return nil, ErrNoSession
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	c.setPageHeaders(req)
	return c.readPage(c.httpClient, req)
}

// RawFetch fetches a web page without the cookie jar, sending cookieHeader
// verbatim as the Cookie header. It shares the client's transport, so a
// configured proxy still applies.
func (c *Client) RawFetch(ctx context.Context, pageURL, cookieHeader string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	c.setPageHeaders(req)
	if cookieHeader != "" {
		req.Header.Set("Cookie", cookieHeader)
	}
	raw := &http.Client{
		Transport:     c.transport,
		Timeout:       c.httpClient.Timeout,
		CheckRedirect: limitRedirects,
	}
	return c.readPage(raw, req)
}

func (c *Client) readPage(hc *http.Client, req *http.Request) ([]byte, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: truncate(string(body), maxErrorBody)}
	}
	return body, nil
}
