// internal/feed/loader.go
package feed

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SourceError means the source string itself is malformed.
type SourceError struct {
	Source string
	Reason string
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("invalid feed source %q: %s", e.Source, e.Reason)
}

// FetchError means the document could not be retrieved.
type FetchError struct {
	Source string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to fetch feed from %q: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("failed to fetch feed from %q: HTTP %d", e.Source, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError means the document was retrieved but is not valid YAML.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse feed from %q: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type Loader struct {
	client *http.Client
}

func NewLoader() *Loader {
	return &Loader{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Load reads a feed from either a local path or an http(s) URL.
// Retry, if any, belongs to the caller.
func (l *Loader) Load(source string) (*Feed, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return l.LoadURL(source)
	}
	return l.LoadFile(source)
}

// LoadURL validates the URL syntactically before fetching.
func (l *Loader) LoadURL(rawURL string) (*Feed, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &SourceError{Source: rawURL, Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &SourceError{Source: rawURL, Reason: "scheme must be http or https"}
	}
	if u.Host == "" {
		return nil, &SourceError{Source: rawURL, Reason: "missing host"}
	}

	resp, err := l.client.Get(rawURL)
	if err != nil {
		return nil, &FetchError{Source: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Source: rawURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Source: rawURL, Err: err}
	}

	return parse(rawURL, body)
}

func (l *Loader) LoadFile(path string) (*Feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FetchError{Source: path, Err: err}
	}
	return parse(path, data)
}

func parse(source string, data []byte) (*Feed, error) {
	var f Feed
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	return &f, nil
}
