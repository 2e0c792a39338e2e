package backends

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tablefs/tablefs-querier/core"
)

// Nginx fetches files from an nginx server with autoindex enabled.
// Listings require `autoindex_format json` on the server side.
type Nginx struct {
	base   *url.URL
	client *http.Client
}

// NewNginx creates a backend for the directory listing service at
// baseURL. client defaults to http.DefaultClient.
func NewNginx(baseURL string, client *http.Client) (*Nginx, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("nginx: invalid base url %q: %w", baseURL, err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Nginx{base: base, client: client}, nil
}

func (n *Nginx) pathURL(path string) string {
	return n.base.String() + "/" + strings.TrimLeft(path, "/")
}

// Fetch GETs the file at path. The payload bytes are passed through
// untouched; for binary fetches compression is disabled so the body is
// exactly the stored content.
func (n *Nginx) Fetch(ctx context.Context, path string, binary bool) (*core.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.pathURL(path), nil)
	if err != nil {
		return nil, &core.FetchError{Path: path, Err: err}
	}
	if binary {
		req.Header.Set("Accept-Encoding", "identity")
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, &core.FetchError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("nginx: %s: %w", path, core.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &core.FetchError{Path: path, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &core.FetchError{Path: path, Err: err}
	}
	return &core.Response{Path: path, Header: resp.Header, Body: body}, nil
}

// autoindexEntry is one element of an nginx JSON autoindex listing.
type autoindexEntry struct {
	Name string `json:"name"`
	Type string `json:"type"` // "file" or "directory"
}

// List GETs the directory listing at path and parses the autoindex JSON.
func (n *Nginx) List(ctx context.Context, path string) (*core.DirectoryInfo, error) {
	listURL := n.pathURL(path)
	if !strings.HasSuffix(listURL, "/") {
		listURL += "/"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, &core.FetchError{Path: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, &core.FetchError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("nginx: %s: %w", path, core.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &core.FetchError{Path: path, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var entries []autoindexEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, &core.FetchError{Path: path, Err: fmt.Errorf("decode autoindex listing: %w", err)}
	}

	info := &core.DirectoryInfo{Count: len(entries)}
	for _, entry := range entries {
		info.Files = append(info.Files, entry.Name)
	}
	return info, nil
}

var _ core.FileSystem = (*Nginx)(nil)
