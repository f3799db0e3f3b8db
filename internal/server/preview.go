package server

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"go.uber.org/zap"
)

// markdown renders generated articles for the browser preview.
var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

var previewTemplate = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { max-width: 48rem; margin: 2rem auto; padding: 0 1rem; font-family: system-ui, sans-serif; line-height: 1.6; }
pre { overflow-x: auto; padding: 0.75rem; border-radius: 6px; }
blockquote { color: #555; border-left: 3px solid #ddd; margin-left: 0; padding-left: 1rem; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>`))

// handlePreview renders the user's most recently generated article as HTML.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	entries, err := s.archive.Transcript(r.Context(), user, 50)
	if err != nil {
		s.log.Warn("transcript lookup failed", zap.String("user", user), zap.Error(err))
		http.Error(w, "transcript lookup failed", http.StatusInternalServerError)
		return
	}

	// The article is the latest substantial bot message; short bot turns are
	// dialogue prompts, not articles.
	var article string
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Role == "bot" && len(entries[i].Content) > 500 {
			article = entries[i].Content
			break
		}
	}
	if article == "" {
		http.Error(w, "no article generated yet", http.StatusNotFound)
		return
	}

	var body bytes.Buffer
	if err := markdown.Convert([]byte(article), &body); err != nil {
		s.log.Warn("markdown render failed", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	title := "Generated article"
	if line := strings.SplitN(article, "\n", 2)[0]; strings.HasPrefix(line, "#") {
		title = strings.TrimSpace(strings.TrimLeft(line, "# "))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	previewTemplate.Execute(w, map[string]any{
		"Title": title,
		"Body":  template.HTML(body.String()),
	})
}
