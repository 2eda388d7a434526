package extract

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/go-shiori/go-readability"
)

// HTML extracts the main article text of an HTML page.
type HTML struct {
	// PageURL resolves relative links inside the page. Optional.
	PageURL *url.URL
}

func (h *HTML) Extract(ctx context.Context, r io.Reader) (*Result, error) {
	pageURL := h.PageURL
	if pageURL == nil {
		pageURL = &url.URL{Scheme: "file", Path: "/"}
	}

	article, err := readability.FromReader(r, pageURL)
	if err != nil {
		return nil, fmt.Errorf("extracting article: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Result{
		Title: article.Title,
		Units: unitsFromText(article.TextContent),
	}, nil
}
