// Package extract turns an uploaded original into ordered segment units.
//
// Extractors are selected by file type (the original file name extension).
// Raster formats (images, scanned PDFs) have no extractor: recognising text
// in them is left to an OCR engine that is not part of this module.
package extract

import (
	"context"
	"fmt"
	"io"
	"strings"

	"sbs-go/internal/model"
)

// Unit is one extracted segment. Target is set only for bilingual formats.
type Unit struct {
	Source string
	Target *string
}

// Result is the output of an extractor.
type Result struct {
	Title string
	Units []Unit
}

// Extractor reads an original file and produces segment units.
type Extractor interface {
	Extract(ctx context.Context, r io.Reader) (*Result, error)
}

// ForFileType returns the extractor for a file type such as ".txt" or "html".
func ForFileType(fileType string) (Extractor, error) {
	switch NormalizeFileType(fileType) {
	case ".txt", ".text", ".md":
		return &PlainText{}, nil
	case ".html", ".htm", ".xhtml":
		return &HTML{}, nil
	case ".xlf", ".xliff":
		return &XLIFF{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnsupportedFileType, fileType)
	}
}

// NormalizeFileType lowercases a file type and ensures a leading dot.
func NormalizeFileType(fileType string) string {
	ft := strings.ToLower(strings.TrimSpace(fileType))
	if ft != "" && !strings.HasPrefix(ft, ".") {
		ft = "." + ft
	}
	return ft
}

// unitsFromText segments free text into source-only units.
func unitsFromText(text string) []Unit {
	sentences := SplitSentences(text)
	units := make([]Unit, len(sentences))
	for i, s := range sentences {
		units[i] = Unit{Source: s}
	}
	return units
}

// PlainText extracts UTF-8 text files.
type PlainText struct{}

func (p *PlainText) Extract(ctx context.Context, r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading text: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return &Result{Units: unitsFromText(text)}, nil
}
