package extract

import (
	"strings"
	"testing"
)

const articleHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <title>Fallback Title</title>
  <meta name="description" content="Notes from a week of restoring an old wooden boat.">
  <meta property="og:title" content="Restoring a Wooden Boat">
  <meta property="og:type" content="article">
</head>
<body>
  <nav><a href="/">Home</a> <a href="/about">About</a></nav>
  <article>
    <h1>Restoring a Wooden Boat</h1>
    <p>Last summer my father and I decided to restore the small wooden sailing boat that had been sitting in his barn for nearly twenty years.
    The hull was covered in old paint, several planks had rotted through, and the mast was cracked along most of its length.</p>
    <p>We started by stripping the paint by hand, which took the better part of three weekends. Underneath we found the original cedar planking,
    still sound in most places, and a builder's mark stamped into the transom that told us the boat was made in a small yard on the coast.</p>
    <p>Replacing the rotten planks was the hardest part of the whole project. Each one had to be steamed, bent to shape and fastened with copper rivets,
    and we ruined more than a few pieces of wood before we learned how long to leave them in the steam box.</p>
    <p>By the end of August the boat was back in the water. She leaks a little, as wooden boats do, but she sails beautifully and every
    evening spent on the lake reminds us of the long afternoons we spent together in that dusty barn.</p>
  </article>
  <footer>Copyright</footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	doc, err := NewExtractor().Extract("https://blog.example.com/boat", []byte(articleHTML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "Restoring a Wooden Boat" {
		t.Errorf("expected og:title, got %q", doc.Title)
	}
	if doc.Description != "Notes from a week of restoring an old wooden boat." {
		t.Errorf("expected meta description, got %q", doc.Description)
	}
	if !strings.Contains(doc.Content, "copper rivets") {
		t.Errorf("expected article text in content, got %q", doc.Content)
	}
	if strings.Contains(doc.Content, "\n") {
		t.Errorf("expected whitespace to be collapsed")
	}
	if doc.ContentType != "article" {
		t.Errorf("expected article content type, got %q", doc.ContentType)
	}
	if doc.Language != "en" {
		t.Errorf("expected en, got %q", doc.Language)
	}

	req := doc.IndexRequest()
	if req.URL != "https://blog.example.com/boat" || req.Title != doc.Title || req.Language != "en" {
		t.Errorf("unexpected index request %+v", req)
	}
}

func TestExtractor_InvalidURL(t *testing.T) {
	if _, err := NewExtractor().Extract("://bad", []byte(articleHTML)); err == nil {
		t.Error("expected error for invalid url")
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"":                "webpage",
		"Article":         "article",
		"article:opinion": "article",
		"video.movie":     "video.movie",
	}
	for in, want := range tests {
		if got := contentType(in); got != want {
			t.Errorf("contentType(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("héllo", 2); got != "hé" {
		t.Errorf("expected rune-safe truncation, got %q", got)
	}
	if got := truncateRunes("abc", 10); got != "abc" {
		t.Errorf("expected no truncation, got %q", got)
	}
}
