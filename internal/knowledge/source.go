// Package knowledge manages the searchable knowledge sources a user attaches
// to a session: web pages and uploaded documents. Each registered source is
// indexed into its own vector collection and exposed to the generation
// pipeline as a search tool.
package knowledge

import "fmt"

// SourceType discriminates the source union.
type SourceType string

const (
	SourceWebsite  SourceType = "website"
	SourceDocument SourceType = "document"
)

// DocKind is the closed set of supported document kinds, resolved once at
// intake from the upload's MIME type.
type DocKind string

const (
	DocPDF  DocKind = "pdf"
	DocDOCX DocKind = "docx"
	DocTXT  DocKind = "txt"
)

// mimeKinds maps accepted MIME types to their document kind.
var mimeKinds = map[string]DocKind{
	"application/pdf": DocPDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": DocDOCX,
	"text/plain": DocTXT,
}

// KindForMIME resolves a MIME type to a document kind. The second return is
// false for unsupported types.
func KindForMIME(mimeType string) (DocKind, bool) {
	k, ok := mimeKinds[mimeType]
	return k, ok
}

// Source is a tagged union: either a website URL or a local document of a
// known kind.
type Source struct {
	Type SourceType
	URL  string  // set for websites
	Path string  // set for documents
	Kind DocKind // set for documents
}

// WebsiteSource creates a website source.
func WebsiteSource(url string) Source {
	return Source{Type: SourceWebsite, URL: url}
}

// DocumentSource creates a document source of the given kind.
func DocumentSource(path string, kind DocKind) Source {
	return Source{Type: SourceDocument, Path: path, Kind: kind}
}

// Describe returns a short human-readable description of the source.
func (s Source) Describe() string {
	if s.Type == SourceWebsite {
		return fmt.Sprintf("website %s", s.URL)
	}
	return fmt.Sprintf("%s document %s", s.Kind, s.Path)
}
