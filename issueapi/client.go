// Package issueapi talks to the REST issue service the panel administers.
package issueapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"civicsync-admin/models"
	"civicsync-admin/store"

	json "github.com/goccy/go-json"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, e.Body)
}

// Unwrap maps 404 onto store.ErrNotFound.
func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusNotFound {
		return store.ErrNotFound
	}
	return nil
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

var _ store.Source = (*Client)(nil)

func (c *Client) issuePath(id string) string {
	return "/issues/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// ListIssues fetches GET /issues.
func (c *Client) ListIssues(ctx context.Context) ([]models.Issue, error) {
	var issues []models.Issue
	if err := c.do(ctx, http.MethodGet, "/issues", "", nil, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

// UpdateIssue sends PATCH /issues/{id} with the non-nil fields of patch.
func (c *Client) UpdateIssue(ctx context.Context, id string, patch models.IssuePatch) (models.Issue, error) {
	payload, err := json.Marshal(patch)
	if err != nil {
		return models.Issue{}, err
	}
	var issue models.Issue
	err = c.do(ctx, http.MethodPatch, c.issuePath(id), "application/json", bytes.NewReader(payload), &issue)
	return issue, err
}

// DeleteIssue sends DELETE /issues/{id}.
func (c *Client) DeleteIssue(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.issuePath(id), "", nil, nil)
}

// ResolveIssue posts the resolution as multipart form data.
func (c *Client) ResolveIssue(ctx context.Context, id string, res models.Resolution) (models.Issue, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("resolutionNotes", res.Notes); err != nil {
		return models.Issue{}, err
	}
	if err := w.WriteField("resolvedBy", res.ResolvedBy); err != nil {
		return models.Issue{}, err
	}

	name := res.ImageName
	if name == "" {
		name = "resolution"
	}
	contentType := res.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(res.Image)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="resolutionImage"; filename=%q`, name))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return models.Issue{}, err
	}
	if _, err := part.Write(res.Image); err != nil {
		return models.Issue{}, err
	}
	if err := w.Close(); err != nil {
		return models.Issue{}, err
	}

	var issue models.Issue
	err = c.do(ctx, http.MethodPost, c.issuePath(id)+"/resolve", w.FormDataContentType(), &buf, &issue)
	return issue, err
}
