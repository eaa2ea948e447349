package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// maxManifestBytes bounds the document read over HTTP.
const maxManifestBytes = 64 << 20

// LoadError reports a manifest that could not be fetched or parsed. The
// catalog is left empty.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("manifest %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader reads the catalog manifest from a file path or an http(s) URL.
// Sources ending in .yaml or .yml are parsed as YAML, anything else as JSON.
type Loader struct {
	source string
	client *http.Client
}

// NewLoader creates a loader. timeout bounds the HTTP fetch.
func NewLoader(source string, timeout time.Duration) *Loader {
	return &Loader{
		source: source,
		client: &http.Client{Timeout: timeout},
	}
}

// Source returns the configured location.
func (l *Loader) Source() string { return l.source }

// Load fetches and decodes the manifest. Every failure is a *LoadError.
func (l *Loader) Load(ctx context.Context) (Document, error) {
	data, err := l.read(ctx)
	if err != nil {
		return Document{}, &LoadError{Source: l.source, Err: err}
	}

	var doc Document
	if isYAML(l.source) {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return Document{}, &LoadError{Source: l.source, Err: fmt.Errorf("failed to parse manifest: %w", err)}
	}
	if doc.Modules == nil {
		return Document{}, &LoadError{Source: l.source, Err: fmt.Errorf("manifest has no modules list")}
	}

	return doc, nil
}

func (l *Loader) read(ctx context.Context) ([]byte, error) {
	if !isURL(l.source) {
		data, err := os.ReadFile(l.source)
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest file: %w", err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch manifest: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return data, nil
}

func isURL(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func isYAML(source string) bool {
	p := source
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
