// Package document answers questions from a cached reference document,
// escalating to web search when the document has no answer.
package document

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"

	"github.com/rvenkat/agentdesk/internal/domain"
)

// Source yields the reference document's extracted text.
type Source interface {
	Text(ctx context.Context) (string, error)
}

// PDFSource extracts text from the first PDF found in a directory. The
// extraction runs once; the text is cached for the process lifetime.
type PDFSource struct {
	dir  string
	once sync.Once
	text string
	err  error
}

// NewPDFSource creates a source over the given data directory.
func NewPDFSource(dir string) *PDFSource {
	return &PDFSource{dir: dir}
}

// Text returns the cached document text, extracting it on first use.
func (s *PDFSource) Text(_ context.Context) (string, error) {
	s.once.Do(func() {
		s.text, s.err = s.extract()
	})
	return s.text, s.err
}

func (s *PDFSource) extract() (string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.pdf"))
	if err != nil {
		return "", fmt.Errorf("scan data directory: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: no PDF files in %s", domain.ErrNotFound, s.dir)
	}

	f, r, err := pdf.Open(matches[0])
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", matches[0], err)
	}
	defer f.Close()

	var sb strings.Builder
	totalPage := r.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		p := r.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}
		rows, _ := p.GetTextByRow()
		for _, row := range rows {
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
			sb.WriteByte('\n')
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: %s contained no extractable text", domain.ErrNotFound, matches[0])
	}
	return sb.String(), nil
}

var _ Source = (*PDFSource)(nil)
