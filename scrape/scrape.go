package scrape

import (
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const (
	userAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/96.0.4664.110 Safari/537.36"
	maxLinks    = 10
	maxHeadings = 10
	summaryLen  = 500
)

type Link struct {
	Href string
	Text string
}

type Heading struct {
	Level string // "h1", "h2", "h3"
	Text  string
}

type Result struct {
	Title       string
	Description string
	Headings    []Heading
	Links       []Link
	Summary     string
}

// Fetch downloads the page and extracts its title, meta description,
// leading headings and links, and a paragraph-text summary.
func Fetch(pageURL string) (*Result, error) {
	if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
		return nil, fmt.Errorf("invalid URL, must start with http:// or https://")
	}

	client := &http.Client{Timeout: 15 * time.Second}
	req, err := http.NewRequest("GET", pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	return Parse(doc), nil
}

// Parse walks an already-parsed document. Split out from Fetch so it can be
// tested without a network.
func Parse(doc *html.Node) *Result {
	result := &Result{}
	seenLinks := make(map[string]bool)
	var paragraphs []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if result.Title == "" {
					result.Title = strings.TrimSpace(textContent(n))
				}
			case "meta":
				if attr(n, "name") == "description" && result.Description == "" {
					result.Description = attr(n, "content")
				}
			case "h1", "h2", "h3":
				if len(result.Headings) < maxHeadings {
					if text := strings.TrimSpace(textContent(n)); text != "" {
						result.Headings = append(result.Headings, Heading{Level: n.Data, Text: truncate(text, 100)})
					}
				}
			case "a":
				if len(result.Links) < maxLinks {
					href := attr(n, "href")
					text := strings.TrimSpace(textContent(n))
					if href != "" && text != "" && !seenLinks[href] {
						seenLinks[href] = true
						result.Links = append(result.Links, Link{Href: href, Text: truncate(text, 50)})
					}
				}
			case "p":
				if text := strings.TrimSpace(textContent(n)); text != "" {
					paragraphs = append(paragraphs, text)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if result.Title == "" {
		result.Title = "No title found"
	}
	if result.Description == "" {
		result.Description = "No description found"
	}
	result.Summary = truncate(strings.Join(paragraphs, " "), summaryLen)
	return result
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Back up to a rune boundary so non-ASCII text is never cut mid-rune
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
