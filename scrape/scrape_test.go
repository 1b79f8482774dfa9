package scrape

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
	<title>Example Domain</title>
	<meta name="description" content="An example page for testing">
</head>
<body>
	<h1>Main Heading</h1>
	<h2>Sub Heading</h2>
	<p>First paragraph of body text.</p>
	<p>Second paragraph.</p>
	<a href="/about">About</a>
	<a href="/about">About again</a>
	<a href="https://example.org">External</a>
	<a href="/empty"></a>
</body>
</html>`

func parsePage(t *testing.T, page string) *Result {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("failed to parse sample page: %v", err)
	}
	return Parse(doc)
}

func TestParseExtractsPageStructure(t *testing.T) {
	result := parsePage(t, samplePage)

	if result.Title != "Example Domain" {
		t.Errorf("Title = %q", result.Title)
	}
	if result.Description != "An example page for testing" {
		t.Errorf("Description = %q", result.Description)
	}

	if len(result.Headings) != 2 {
		t.Fatalf("got %d headings, want 2", len(result.Headings))
	}
	if result.Headings[0].Level != "h1" || result.Headings[0].Text != "Main Heading" {
		t.Errorf("first heading = %+v", result.Headings[0])
	}

	// Duplicate hrefs collapse, anchors without text are skipped
	if len(result.Links) != 2 {
		t.Fatalf("got %d links, want 2: %+v", len(result.Links), result.Links)
	}
	if result.Links[0].Href != "/about" || result.Links[1].Href != "https://example.org" {
		t.Errorf("links = %+v", result.Links)
	}

	if !strings.Contains(result.Summary, "First paragraph") || !strings.Contains(result.Summary, "Second paragraph") {
		t.Errorf("summary = %q", result.Summary)
	}
}

func TestParseFallbacksForBarePage(t *testing.T) {
	result := parsePage(t, "<html><body><div>nothing useful</div></body></html>")

	if result.Title != "No title found" {
		t.Errorf("Title = %q", result.Title)
	}
	if result.Description != "No description found" {
		t.Errorf("Description = %q", result.Description)
	}
	if len(result.Headings) != 0 || len(result.Links) != 0 {
		t.Errorf("unexpected structure extracted: %+v", result)
	}
}

func TestParseCapsHeadingsAndLinks(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 20; i++ {
		sb.WriteString("<h2>Heading</h2>")
		sb.WriteString(`<a href="/p` + string(rune('a'+i)) + `">link</a>`)
	}
	sb.WriteString("</body></html>")

	result := parsePage(t, sb.String())
	if len(result.Headings) != maxHeadings {
		t.Errorf("got %d headings, want %d", len(result.Headings), maxHeadings)
	}
	if len(result.Links) != maxLinks {
		t.Errorf("got %d links, want %d", len(result.Links), maxLinks)
	}
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	long := strings.Repeat("日", 200)
	page := "<html><body><h1>" + long + "</h1><p>" + long + "</p></body></html>"

	result := parsePage(t, page)
	if len(result.Headings) != 1 {
		t.Fatalf("got %d headings, want 1", len(result.Headings))
	}
	if !utf8.ValidString(result.Headings[0].Text) {
		t.Errorf("truncated heading is not valid UTF-8: %q", result.Headings[0].Text)
	}
	if !utf8.ValidString(result.Summary) {
		t.Errorf("truncated summary is not valid UTF-8: %q", result.Summary)
	}
}

func TestFetchRejectsNonHTTPURL(t *testing.T) {
	if _, err := Fetch("ftp://example.com"); err == nil {
		t.Error("expected error for non-http URL")
	}
	if _, err := Fetch("notaurl"); err == nil {
		t.Error("expected error for bare word")
	}
}

func TestFetchAgainstLocalServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	result, err := Fetch(srv.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if result.Title != "Example Domain" {
		t.Errorf("Title = %q", result.Title)
	}
}

func TestFetchSurfacesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := Fetch(srv.URL); err == nil {
		t.Error("expected error for 404 response")
	}
}
