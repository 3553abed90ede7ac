package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pbaille/contentpack/internal/domain"
)

// Fetcher reads content sources: local files, or http(s) URLs downloaded with
// retries and cached on disk.
type Fetcher struct {
	Client *http.Client
	Retry  RetryConfig

	// CacheDir holds downloaded files; empty disables caching.
	CacheDir string
	// IgnoreCache forces a download even when a cached copy exists.
	IgnoreCache bool
}

// New returns a Fetcher with a client using the given timeout.
func New(timeout time.Duration, cacheDir string) *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: timeout},
		Retry:    DefaultRetryConfig(),
		CacheDir: cacheDir,
	}
}

// IsURL checks if a string looks like an http(s) URL
func IsURL(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch returns the bytes of src, a local path or a URL.
func (f *Fetcher) Fetch(ctx context.Context, src string) ([]byte, error) {
	if !IsURL(src) {
		b, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", src, err)
		}
		return b, nil
	}

	u, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	var cached string
	if f.CacheDir != "" {
		cached = filepath.Join(f.CacheDir, cacheName(u))
		if !f.IgnoreCache {
			if b, err := os.ReadFile(cached); err == nil {
				return b, nil
			}
		}
	}

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	body, err := get(ctx, client, u.String(), f.Retry)
	if err != nil {
		return nil, err
	}

	if cached != "" {
		if err := writeCache(cached, body); err != nil {
			return nil, err
		}
	}
	return body, nil
}

// cacheName derives a file name from the URL's last path segment and its query.
func cacheName(u *url.URL) string {
	name := path.Base(u.Path) + u.RawQuery
	if name == "" || name == "." || name == "/" {
		name = u.Host
	}
	return strings.NewReplacer("/", "_", "?", "_", "&", "_", "=", "_").Replace(name)
}

func writeCache(dst string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp := dst + ".part"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

// FetchNodes reads a node feed. The feed is either a JSON array of node objects or a
// nested tree whose nodes carry their children under "children"; trees are
// flattened parent first and the "children" key is dropped.
func (f *Fetcher) FetchNodes(ctx context.Context, src string) ([]domain.RawNode, error) {
	b, err := f.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	return DecodeNodes(b)
}

// DecodeNodes parses a node feed, see FetchNodes. Numbers decode as json.Number.
func DecodeNodes(b []byte) ([]domain.RawNode, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode node data: %w", err)
	}

	var nodes []domain.RawNode
	switch v := doc.(type) {
	case []any:
		for i, elem := range v {
			m, ok := elem.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("decode node data: element %d is not an object", i)
			}
			nodes = appendTree(nodes, m)
		}
	case map[string]any:
		nodes = appendTree(nodes, v)
	default:
		return nil, fmt.Errorf("decode node data: unexpected %T at top level", doc)
	}
	return nodes, nil
}

func appendTree(out []domain.RawNode, m map[string]any) []domain.RawNode {
	children, _ := m["children"].([]any)
	delete(m, "children")
	out = append(out, domain.RawNode(m))
	for _, c := range children {
		if cm, ok := c.(map[string]any); ok {
			out = appendTree(out, cm)
		}
	}
	return out
}

// FetchAssessmentItems reads a JSON array of {id, item_data} records.
func (f *Fetcher) FetchAssessmentItems(ctx context.Context, src string) ([]domain.AssessmentItem, error) {
	b, err := f.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	var items []domain.AssessmentItem
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("decode assessment items: %w", err)
	}
	return items, nil
}
