package strategy

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/araddon/dateparse"
	readability "github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"

	"pagesift/models"
	"pagesift/pkg/classify"
	"pagesift/pkg/dom"
)

// minLanguageTextRunes is the least content length worth running language
// detection on; shorter texts give unreliable results.
const minLanguageTextRunes = 200

// articleStrategy extracts a single record for the page's dominant article
// block. Readability isolates the main content and supplies byline, excerpt
// and publication metadata; structural role search fills whatever
// readability could not resolve.
type articleStrategy struct {
	roles     RolePriorities
	converter *md.Converter
	languages lingua.LanguageDetector
}

func newArticleStrategy(roles RolePriorities) *articleStrategy {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English, lingua.Spanish, lingua.French,
			lingua.German, lingua.Portuguese, lingua.Italian,
		).
		Build()
	return &articleStrategy{
		roles:     roles,
		converter: md.NewConverter("", true, nil),
		languages: detector,
	}
}

func (s *articleStrategy) Category() models.Category {
	return models.CategoryArticle
}

func (s *articleStrategy) Extract(doc *dom.Document) []*models.Record {
	rec := models.NewRecord()
	if doc.BaseURL() != nil {
		rec.SetFirst("url", doc.BaseURL().String())
	}

	s.extractReadable(doc, rec)
	s.extractStructural(doc, rec)

	if rec.Len() == 0 {
		return nil
	}

	if content, ok := rec.Get("content"); ok {
		text, _ := content.(string)
		rec.SetFirst("word_count", len(strings.Fields(text)))
		if lang := s.detectLanguage(text); lang != "" {
			rec.SetFirst("language", lang)
		}
	}
	return []*models.Record{rec}
}

// extractReadable runs the readability pass over the raw page HTML.
func (s *articleStrategy) extractReadable(doc *dom.Document, rec *models.Record) {
	article, err := readability.FromReader(strings.NewReader(doc.RawHTML()), doc.BaseURL())
	if err != nil {
		return
	}

	if title := collapse(article.Title); title != "" {
		rec.SetFirst("title", title)
	}
	if byline := collapse(article.Byline); byline != "" {
		rec.SetFirst("author", byline)
	}
	if article.PublishedTime != nil {
		rec.SetFirst("published", article.PublishedTime.Format("2006-01-02"))
	}
	if site := collapse(article.SiteName); site != "" {
		rec.SetFirst("site_name", site)
	}
	if excerpt := collapse(article.Excerpt); excerpt != "" {
		rec.SetFirst("excerpt", excerpt)
	}

	if text := strings.TrimSpace(article.TextContent); text != "" {
		rec.SetFirst("content", text)
		if markdown, err := s.converter.ConvertString(article.Content); err == nil {
			if markdown = strings.TrimSpace(markdown); markdown != "" {
				rec.SetFirst("content_markdown", markdown)
			}
		}
	}
}

// extractStructural fills fields readability left unset using role-priority
// search over the dominant block.
func (s *articleStrategy) extractStructural(doc *dom.Document, rec *models.Record) {
	root := classify.ArticleRoot(doc)
	if root == nil {
		root = doc.Body()
	}
	if root == nil {
		return
	}

	if !rec.Has("title") {
		if title := s.roles.text(root, "title"); title != "" {
			rec.SetFirst("title", title)
		} else if title := doc.Title(); title != "" {
			rec.SetFirst("title", collapse(title))
		}
	}
	if !rec.Has("author") {
		if author := s.roles.text(root, "author"); author != "" {
			rec.SetFirst("author", author)
		}
	}
	if !rec.Has("published") {
		if raw := s.roles.text(root, "date"); raw != "" {
			if t, err := dateparse.ParseAny(raw); err == nil {
				rec.SetFirst("published", t.Format("2006-01-02"))
			} else {
				rec.SetFirst("date", raw)
			}
		}
	}
	if !rec.Has("content") {
		var paragraphs []string
		for _, p := range root.Select("p") {
			if text := collapse(p.Text()); text != "" {
				paragraphs = append(paragraphs, text)
			}
		}
		if len(paragraphs) > 0 {
			rec.SetFirst("content", strings.Join(paragraphs, "\n\n"))
		}
	}

	var images []string
	for _, img := range doc.Select("img") {
		if src := firstAttr(img, "src", "data-src"); src != "" {
			images = append(images, src)
		}
	}
	if len(images) > 0 {
		rec.SetFirst("images", images)
	}
}

func (s *articleStrategy) detectLanguage(text string) string {
	if len([]rune(text)) < minLanguageTextRunes {
		return ""
	}
	lang, ok := s.languages.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
