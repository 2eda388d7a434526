package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"

	"sbs-go/internal/model"
)

const defaultWidth = 100

// termWidth is the width of stdout, or defaultWidth when it is not a terminal.
func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// truncate shortens s to at most width runes, marking the cut with "…".
func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	r := []rune(s)
	return string(r[:width-1]) + "…"
}

// masked returns the source text of seg with redacted runes replaced by █.
func masked(seg *model.Segment) string {
	if len(seg.Redactions) == 0 {
		return seg.SourceText
	}
	r := []rune(seg.SourceText)
	for _, red := range seg.Redactions {
		for i := red.StartIndex; i < red.EndIndex && i < len(r); i++ {
			r[i] = '█'
		}
	}
	return string(r)
}

func printDocument(d *model.Document) {
	fmt.Printf("ID:        %s\n", d.ID)
	fmt.Printf("Name:      %s\n", d.Name)
	if d.OriginalFileName != "" {
		fmt.Printf("File:      %s (%s, %d bytes)\n", d.OriginalFileName, d.FileType, d.FileSize)
	}
	fmt.Printf("Languages: %s -> %s\n", d.SourceLanguage, d.TargetLanguage)
	fmt.Printf("Status:    %s\n", d.ProcessingStatus)
	fmt.Printf("Segments:  %d\n", len(d.Segments))
	fmt.Printf("Created:   %s\n", d.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated:   %s\n", d.UpdatedAt.Format("2006-01-02 15:04:05"))

	keys := make([]string, 0, len(d.Metadata))
	for k := range d.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %s: %s\n", k, d.Metadata[k])
	}
}

func printSegment(seg *model.Segment, width int) {
	half := (width - 7) / 2
	if half < 10 {
		half = 10
	}
	target := ""
	if seg.HasTarget() {
		target = *seg.TargetText
	}
	fmt.Printf("%3d  %-*s  %s\n", seg.Position, half, truncate(masked(seg), half), truncate(target, half))
	fmt.Printf("     %s\n", seg.ID)

	for _, a := range sortedAnnotations(seg) {
		span := model.Span{StartIndex: a.StartIndex, EndIndex: a.EndIndex}
		fmt.Printf("     note %s [%d,%d) %q: %s\n", a.ID, a.StartIndex, a.EndIndex, span.Slice(seg.SourceText), a.Text)
	}
	for _, r := range sortedRedactions(seg) {
		reason := ""
		if r.Reason != nil {
			reason = ": " + *r.Reason
		}
		fmt.Printf("     redacted %s [%d,%d)%s\n", r.ID, r.StartIndex, r.EndIndex, reason)
	}
}

func sortedAnnotations(seg *model.Segment) []*model.Annotation {
	out := make([]*model.Annotation, 0, len(seg.Annotations))
	for _, a := range seg.Annotations {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartIndex != out[j].StartIndex {
			return out[i].StartIndex < out[j].StartIndex
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func sortedRedactions(seg *model.Segment) []*model.Redaction {
	out := make([]*model.Redaction, 0, len(seg.Redactions))
	for _, r := range seg.Redactions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartIndex != out[j].StartIndex {
			return out[i].StartIndex < out[j].StartIndex
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func printEntry(e *model.TMEntry, width int) {
	verified := ""
	if e.IsVerified {
		verified = " verified"
	}
	fmt.Printf("%s  %s>%s  %.2f  used %d%s\n", e.ID, e.SourceLanguage, e.TargetLanguage, e.Confidence, e.UseCount, verified)
	fmt.Printf("    %s\n    %s\n", truncate(e.SourceText, width-4), truncate(e.TargetText, width-4))
	if e.Context != nil {
		fmt.Printf("    context: %s\n", truncate(*e.Context, width-13))
	}
	if len(e.Tags) > 0 {
		fmt.Printf("    tags: %s\n", strings.Join(e.Tags, ", "))
	}
}
