package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/softmind/personabot/internal/config"
)

// WebImporter fetches a web page and extracts its readable text, used to
// seed a character backstory from a URL.
type WebImporter struct {
	httpClient *http.Client
	maxLen     int
}

func NewWebImporter() *WebImporter {
	return &WebImporter{
		httpClient: &http.Client{Timeout: config.WebImportTimeout},
		maxLen:     config.WebImportMaxLen,
	}
}

func (w *WebImporter) Extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "personabot/1.0")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	doc.Find("script, style, nav, header, footer, aside").Remove()

	var parts []string
	doc.Find("p, h1, h2, h3, li").Each(func(_ int, sel *goquery.Selection) {
		text := normalizeSpace(sel.Text())
		if len(text) >= 40 {
			parts = append(parts, text)
		}
	})

	text := strings.Join(parts, "\n")
	if text == "" {
		text = normalizeSpace(doc.Find("body").Text())
	}
	if text == "" {
		return "", fmt.Errorf("page has no readable text")
	}

	runes := []rune(text)
	if len(runes) > w.maxLen {
		text = string(runes[:w.maxLen])
	}
	return text, nil
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
