package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kutoven/wbreviews/pkg/models"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ratingMarkers is checked in order; the first marker found in the class list wins.
var ratingMarkers = []struct {
	marker string
	rating string
}{
	{"star5", "5"},
	{"star4", "4"},
	{"star3", "3"},
	{"star2", "2"},
	{"star1", "1"},
}

// RatingFromClass maps a rating element's class attribute to "1".."5",
// or models.NotAvailable when no star marker is present.
func RatingFromClass(class string) string {
	for _, m := range ratingMarkers {
		if strings.Contains(class, m.marker) {
			return m.rating
		}
	}
	return models.NotAvailable
}

// Extract parses a rendered page snapshot into reviews in document order.
// Containers that cannot be parsed are logged and counted in skipped.
func Extract(ctx context.Context, page Page) (reviews []models.Review, skipped int, err error) {
	src, err := page.HTML(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("read page source: %w", err)
	}
	reviews, skipped = ParseReviews(ctx, src)
	return reviews, skipped, nil
}

// ParseReviews extracts every review container from an HTML document.
func ParseReviews(ctx context.Context, src string) ([]models.Review, int) {
	logger := zerolog.Ctx(ctx)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to parse page source")
		return nil, 0
	}

	containers := doc.Find(ContainerSelector)
	reviews := make([]models.Review, 0, containers.Length())
	skipped := 0

	containers.Each(func(i int, s *goquery.Selection) {
		review, err := containerParser(s)
		if err != nil {
			skipped++
			logger.Warn().Err(err).Int("index", i).Msg("Skipping review")
			return
		}
		reviews = append(reviews, review)
	})

	logger.Debug().Int("parsed", len(reviews)).Int("skipped", skipped).Msg("Extracted reviews")
	return reviews, skipped
}

// containerParser is swapped in tests to simulate malformed containers.
var containerParser = parseContainer

// parseContainer is the single fallible step; field lookups themselves never fail.
func parseContainer(s *goquery.Selection) (review models.Review, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewEngineError(ErrCodeElementExtraction, "review container could not be parsed", fmt.Errorf("%v", r))
		}
	}()

	if len(s.Nodes) != 1 || s.Nodes[0].Type != html.ElementNode {
		return models.Review{}, NewEngineError(ErrCodeElementExtraction, "review container is not an element", nil)
	}

	rating := models.NotAvailable
	if el := s.Find(RatingSelector).First(); el.Length() > 0 {
		class, _ := el.Attr("class")
		rating = RatingFromClass(class)
	}

	return models.NewReview(
		fieldText(s, DateSelector),
		fieldText(s, AuthorSelector),
		fieldText(s, TextSelector),
		rating,
		s.Find(PhotoSelector).Length(),
		s.Find(VideoSelector).Length() > 0,
		fieldText(s, TagsSelector),
	), nil
}

// fieldText returns the rendered text of the first match, or models.NotAvailable.
func fieldText(s *goquery.Selection, selector string) string {
	el := s.Find(selector).First()
	if el.Length() == 0 {
		return models.NotAvailable
	}
	text := renderedText(el.Nodes[0])
	if text == "" {
		return models.NotAvailable
	}
	return text
}

// blockElements break the line before and after their content.
var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Figcaption: true, atom.Figure: true, atom.Footer: true, atom.Form: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hr: true, atom.Li: true, atom.Main: true, atom.Nav: true,
	atom.Ol: true, atom.P: true, atom.Pre: true, atom.Section: true, atom.Table: true,
	atom.Tr: true, atom.Ul: true,
}

// unrendered elements never contribute text.
var unrendered = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Template: true, atom.Noscript: true,
	atom.Head: true, atom.Iframe: true, atom.Object: true, atom.Svg: true,
}

// collapsible is the whitespace CSS folds into single spaces.
var collapsible = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\f", " ")

// renderedText approximates the element's innerText from markup: <br> and block
// boundaries become line breaks, source whitespace collapses, and descendants
// hidden with the hidden attribute or an inline display:none/visibility:hidden
// style are dropped. Class-based hiding needs computed styles and is not seen.
func renderedText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				b.WriteString(collapsible.Replace(c.Data))
			case html.ElementNode:
				if unrendered[c.DataAtom] || isHidden(c) {
					continue
				}
				if c.DataAtom == atom.Br {
					b.WriteByte('\n')
					continue
				}
				block := blockElements[c.DataAtom]
				if block {
					b.WriteByte('\n')
				}
				if c.DataAtom == atom.Td || c.DataAtom == atom.Th {
					b.WriteByte(' ')
				}
				walk(c)
				if block {
					b.WriteByte('\n')
				}
			}
		}
	}
	walk(n)
	return normalizeText(b.String())
}

func isHidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "style":
			style := strings.ToLower(strings.ReplaceAll(a.Val, " ", ""))
			if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}

// normalizeText collapses space runs inside each line, trims lines and drops blank ones.
func normalizeText(raw string) string {
	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		if line = collapseSpaces(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func collapseSpaces(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range s {
		if r == ' ' {
			pending = true
			continue
		}
		if pending && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pending = false
		b.WriteRune(r)
	}
	return b.String()
}
