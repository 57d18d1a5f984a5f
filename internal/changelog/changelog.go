// Package changelog renders the site changelog from markdown.
package changelog

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(),
	),
)

// Render converts changelog markdown to HTML.
func Render(markdown []byte) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert(markdown, &buf); err != nil {
		return "", fmt.Errorf("rendering changelog: %w", err)
	}
	return buf.String(), nil
}

// Service serves a changelog file. The rendered HTML is cached after
// the first successful read; failures are retried on the next request
// so a changelog dropped in after startup still shows up.
type Service struct {
	path string

	mu     sync.Mutex
	html   string
	loaded bool
}

// NewService creates a Service reading from the given markdown file.
func NewService(path string) *Service {
	return &Service{path: path}
}

// HTML returns the rendered changelog.
func (s *Service) HTML() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.html, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("reading changelog: %w", err)
	}
	html, err := Render(data)
	if err != nil {
		return "", err
	}
	s.html, s.loaded = html, true
	return s.html, nil
}
