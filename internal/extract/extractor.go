package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"

	"github.com/FranksOps/puresearch/internal/api"
)

// maxContentRunes bounds Document.Content; the backend only needs enough
// text to classify and index.
const maxContentRunes = 20000

// DefaultLanguages is the detector's candidate set.
var DefaultLanguages = []lingua.Language{
	lingua.English,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Portuguese,
	lingua.Italian,
	lingua.Dutch,
}

// Document is the readable part of a fetched page.
type Document struct {
	URL         string
	Title       string
	Description string
	Content     string
	ContentType string
	Language    string // ISO 639-1, lower case; empty when undetermined
	Published   *time.Time
}

// IndexRequest converts the document into the backend's index payload.
func (d Document) IndexRequest() api.IndexRequest {
	req := api.IndexRequest{
		URL:         d.URL,
		Title:       d.Title,
		Description: d.Description,
		Content:     d.Content,
		ContentType: d.ContentType,
		Language:    d.Language,
	}
	if d.Published != nil {
		req.PublishedAt = d.Published.UTC().Format(time.RFC3339)
	}
	return req
}

// Extractor pulls the main text out of HTML pages.
// It is safe for concurrent use.
type Extractor struct {
	languages []lingua.Language

	once     sync.Once
	detector lingua.LanguageDetector
}

// NewExtractor builds an extractor detecting among languages, or
// DefaultLanguages when none are given.
func NewExtractor(languages ...lingua.Language) *Extractor {
	if len(languages) < 2 {
		languages = DefaultLanguages
	}
	return &Extractor{languages: languages}
}

// Extract parses body as the HTML of pageURL.
func (e *Extractor) Extract(pageURL string, body []byte) (*Document, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}

	rp := readability.NewParser()
	article, err := rp.Parse(bytes.NewReader(body), u)
	if err != nil {
		return nil, fmt.Errorf("readability parse failed: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("html parse failed: %w", err)
	}

	out := &Document{
		URL:         pageURL,
		Title:       firstNonEmpty(metaContent(doc, `meta[property="og:title"]`), article.Title, strings.TrimSpace(doc.Find("title").First().Text())),
		Description: firstNonEmpty(metaContent(doc, `meta[name="description"]`), metaContent(doc, `meta[property="og:description"]`), article.Excerpt),
		Content:     truncateRunes(collapseSpace(article.TextContent), maxContentRunes),
		ContentType: contentType(metaContent(doc, `meta[property="og:type"]`)),
		Published:   article.PublishedTime,
	}
	if out.Content == "" {
		out.Content = truncateRunes(collapseSpace(doc.Find("body").Text()), maxContentRunes)
	}
	out.Language = e.detect(out.Content)

	return out, nil
}

func (e *Extractor) detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	e.once.Do(func() {
		e.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(e.languages...).
			WithMinimumRelativeDistance(0.1).
			Build()
	})
	lang, ok := e.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}

func metaContent(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().AttrOr("content", ""))
}

func contentType(ogType string) string {
	switch t := strings.ToLower(ogType); {
	case t == "":
		return "webpage"
	case t == "article" || strings.HasPrefix(t, "article:"):
		return "article"
	default:
		return t
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
