// Package extract reduces the accepted source formats — HTML fragments,
// article URLs, and PDF files — to the plain text the orchestrator
// summarizes.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
)

// maxFetchSize bounds how much of a remote page is read.
const maxFetchSize = 5 << 20 // 5MB

// HTMLText strips markup from an HTML fragment, returning the visible text.
// Script and style contents are discarded. Selections copied from a page
// often arrive with markup attached; the orchestrator only wants the text.
func HTMLText(fragment string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))

	var out strings.Builder
	skipDepth := 0
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return strings.TrimSpace(out.String())
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if skippedTag(string(name)) {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if skippedTag(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			text := strings.TrimSpace(string(tokenizer.Text()))
			if text == "" {
				continue
			}
			if out.Len() > 0 {
				out.WriteByte(' ')
			}
			out.WriteString(text)
		}
	}
}

func skippedTag(name string) bool {
	return name == "script" || name == "style" || name == "noscript"
}

// Article fetches rawURL and reduces it to the readable article text.
// The returned title may be empty when the page declares none.
func Article(ctx context.Context, client *http.Client, rawURL string) (title, text string, err error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("parsing url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("creating request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetching url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("url returned status %d", resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, maxFetchSize)
	parser := readability.NewParser()
	article, err := parser.Parse(body, parsed)
	if err != nil {
		return "", "", fmt.Errorf("extracting article: %w", err)
	}

	text = strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", "", fmt.Errorf("no readable content at %s", rawURL)
	}
	return article.Title, text, nil
}

// PDFText extracts the plain text of a PDF document given as raw bytes.
func PDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", fmt.Errorf("pdf contains no extractable text")
	}
	return text, nil
}
