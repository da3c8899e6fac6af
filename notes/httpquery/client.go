// Package httpquery implements the notes QueryClient over the HTTP JSON
// API exposed by the reference note server.
package httpquery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/shellmonger/mynotes/notes"
)

var _ notes.QueryClient = (*Client)(nil)

// TokenProvider supplies the bearer token attached to each request,
// typically the access token of the current identity.
type TokenProvider func() string

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenProvider
}

type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client, primarily for tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL string, token TokenProvider, options ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		token:      token,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *Client) ListNotes(ctx context.Context, limit int, afterToken string) (*notes.ListNotesResult, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if afterToken != "" {
		query.Set("nextToken", afterToken)
	}

	var result notes.ListNotesResult
	if err := c.do(ctx, http.MethodGet, "/api/notes?"+query.Encode(), nil, &result); err != nil {
		return nil, errors.Wrap(err, "[Client.ListNotes]")
	}
	return &result, nil
}

func (c *Client) GetNote(ctx context.Context, noteID string) (*notes.GetNoteResult, error) {
	var result notes.GetNoteResult
	err := c.do(ctx, http.MethodGet, "/api/notes/"+url.PathEscape(noteID), nil, &result)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return &notes.GetNoteResult{}, nil
		}
		return nil, errors.Wrap(err, "[Client.GetNote]")
	}
	return &result, nil
}

func (c *Client) SaveNote(ctx context.Context, note notes.Note) (*notes.SaveNoteResult, error) {
	body := map[string]string{"title": note.Title, "content": note.Content}

	var result notes.SaveNoteResult
	if err := c.do(ctx, http.MethodPut, "/api/notes/"+url.PathEscape(note.ID), body, &result); err != nil {
		return nil, errors.Wrap(err, "[Client.SaveNote]")
	}
	return &result, nil
}

func (c *Client) DeleteNote(ctx context.Context, noteID string) (*notes.DeleteNoteResult, error) {
	var result notes.DeleteNoteResult
	err := c.do(ctx, http.MethodDelete, "/api/notes/"+url.PathEscape(noteID), nil, &result)
	if err != nil && !errors.Is(err, errNotFound) {
		return nil, errors.Wrap(err, "[Client.DeleteNote]")
	}
	return &result, nil
}

var errNotFound = errors.New("not found")

// do issues one request and decodes the JSON response into out. A 404 maps
// to errNotFound; other non-2xx statuses are transport-level failures.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal request")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
