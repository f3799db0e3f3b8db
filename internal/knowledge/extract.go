package knowledge

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// ExtractText returns the plain text content of a source. Websites are
// fetched over HTTP and stripped of markup; documents are read from disk
// with a kind-specific extractor.
func ExtractText(ctx context.Context, src Source) (string, error) {
	switch src.Type {
	case SourceWebsite:
		return fetchWebsite(ctx, src.URL)
	case SourceDocument:
		switch src.Kind {
		case DocPDF:
			return extractPDF(src.Path)
		case DocDOCX:
			return extractDOCX(src.Path)
		case DocTXT:
			data, err := os.ReadFile(src.Path)
			if err != nil {
				return "", fmt.Errorf("reading text file: %w", err)
			}
			return string(data), nil
		}
	}
	return "", fmt.Errorf("unsupported source %q", src.Describe())
}

func fetchWebsite(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request for %s: %w", url, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	return StripHTML(string(body)), nil
}

func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text from %s: %w", path, err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("reading pdf text from %s: %w", path, err)
	}
	return buf.String(), nil
}

func extractDOCX(path string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("opening docx %s: %w", path, err)
	}
	defer r.Close()

	// GetContent returns the raw document XML; strip the markup the same way
	// as for websites.
	content := r.Editable().GetContent()
	return StripHTML(content), nil
}

var (
	scriptRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	tagRe    = regexp.MustCompile(`<[^>]*>`)
	spaceRe  = regexp.MustCompile(`[ \t]+`)
	blankRe  = regexp.MustCompile(`\n{3,}`)
)

// StripHTML removes scripts, styles and markup tags, returning readable text.
func StripHTML(s string) string {
	s = scriptRe.ReplaceAllString(s, " ")
	s = tagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = spaceRe.ReplaceAllString(s, " ")
	s = blankRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

const chunkSize = 1200

// chunkText splits text into passages of roughly chunkSize characters,
// preferring paragraph boundaries.
func chunkText(text string) []string {
	var chunks []string
	var current strings.Builder

	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		// Oversized paragraph: hard-split.
		for len(p) > chunkSize {
			chunks = append(chunks, p[:chunkSize])
			p = p[chunkSize:]
		}
		if current.Len() > 0 && current.Len()+len(p) > chunkSize {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
