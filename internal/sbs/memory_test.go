package sbs_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"sbs-go/internal/model"
	"sbs-go/internal/sbs"
	"sbs-go/internal/tm"
)

func (h *harness) addEntry(t *testing.T, userID, lang, src string, conf float64) *model.TMEntry {
	t.Helper()
	e, err := h.svc.CreateEntry(context.Background(), userID, sbs.EntryRequest{
		SourceLanguage: lang,
		TargetLanguage: "fr",
		SourceText:     src,
		TargetText:     "traduction de " + src,
		Confidence:     &conf,
	})
	if err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	return e
}

func entryIDs(entries []*model.TMEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestService_EntryLifecycle(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	e, err := h.svc.CreateEntry(ctx, "alice", sbs.EntryRequest{
		SourceLanguage: "en",
		TargetLanguage: "fr",
		SourceText:     "hello world",
		TargetText:     "bonjour le monde",
	})
	if err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	if e.Confidence != sbs.DefaultEntryConfidence {
		t.Errorf("Confidence = %v, want default %v", e.Confidence, sbs.DefaultEntryConfidence)
	}
	if !e.CreatedAt.Equal(e.UpdatedAt) {
		t.Errorf("CreatedAt %v != UpdatedAt %v", e.CreatedAt, e.UpdatedAt)
	}

	h.clock.Advance(time.Hour)
	updated, err := h.svc.UpdateEntry(ctx, "alice", e.ID, sbs.EntryUpdate{
		TargetText: strPtr("salut le monde"),
		Confidence: f64Ptr(0.8),
		IsVerified: boolPtr(true),
		Tags:       []string{"informal"},
	})
	if err != nil {
		t.Fatalf("UpdateEntry() error = %v", err)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Error("UpdateEntry() did not refresh UpdatedAt")
	}

	got, err := h.svc.GetEntry(ctx, "alice", e.ID)
	if err != nil {
		t.Fatalf("GetEntry() error = %v", err)
	}
	if got.TargetText != "salut le monde" || got.Confidence != 0.8 || !got.IsVerified || len(got.Tags) != 1 {
		t.Errorf("stored entry = %+v", got)
	}

	if _, err := h.svc.GetEntry(ctx, "bob", e.ID); !errors.Is(err, model.ErrForbidden) {
		t.Errorf("GetEntry() by another user error = %v, want ErrForbidden", err)
	}
	if err := h.svc.DeleteEntry(ctx, "bob", e.ID); !errors.Is(err, model.ErrForbidden) {
		t.Errorf("DeleteEntry() by another user error = %v, want ErrForbidden", err)
	}

	if err := h.svc.DeleteEntry(ctx, "alice", e.ID); err != nil {
		t.Fatalf("DeleteEntry() error = %v", err)
	}
	if _, err := h.svc.GetEntry(ctx, "alice", e.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("GetEntry() after delete error = %v, want ErrNotFound", err)
	}
}

func TestService_EntryValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	tests := []struct {
		name string
		req  sbs.EntryRequest
	}{
		{"confidence above 1", sbs.EntryRequest{SourceLanguage: "en", TargetLanguage: "fr", SourceText: "a", TargetText: "b", Confidence: f64Ptr(1.01)}},
		{"negative confidence", sbs.EntryRequest{SourceLanguage: "en", TargetLanguage: "fr", SourceText: "a", TargetText: "b", Confidence: f64Ptr(-0.1)}},
		{"bad language", sbs.EntryRequest{SourceLanguage: "e", TargetLanguage: "fr", SourceText: "a", TargetText: "b"}},
		{"empty source", sbs.EntryRequest{SourceLanguage: "en", TargetLanguage: "fr", SourceText: " ", TargetText: "b"}},
		{"empty target", sbs.EntryRequest{SourceLanguage: "en", TargetLanguage: "fr", SourceText: "a", TargetText: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.svc.CreateEntry(ctx, "alice", tt.req); !errors.Is(err, model.ErrValidation) {
				t.Errorf("CreateEntry() error = %v, want ErrValidation", err)
			}
		})
	}

	for _, c := range []float64{0, 1} {
		if _, err := h.svc.CreateEntry(ctx, "alice", sbs.EntryRequest{
			SourceLanguage: "en", TargetLanguage: "fr", SourceText: "a", TargetText: "b", Confidence: f64Ptr(c),
		}); err != nil {
			t.Errorf("CreateEntry() with confidence %v error = %v", c, err)
		}
	}
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("query is a fragment of the entry", func(t *testing.T) {
		h := newHarness(t)
		a := h.addEntry(t, "u1", "en", "hello world", 0.9)

		got, err := h.svc.Search(ctx, "u1", tm.Query{SourceLanguage: "en", Text: "hello", MinConfidence: f64Ptr(0.7)})
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(got) != 1 || got[0].ID != a.ID {
			t.Errorf("Search() = %v, want [%s]", entryIDs(got), a.ID)
		}
	})

	t.Run("confidence threshold", func(t *testing.T) {
		h := newHarness(t)
		h.addEntry(t, "u1", "en", "hello world", 0.5)

		got, _ := h.svc.Search(ctx, "u1", tm.Query{SourceLanguage: "en", Text: "hello", MinConfidence: f64Ptr(0.7)})
		if len(got) != 0 {
			t.Errorf("Search(min 0.7) returned %d entries, want 0", len(got))
		}
		got, _ = h.svc.Search(ctx, "u1", tm.Query{SourceLanguage: "en", Text: "hello", MinConfidence: f64Ptr(0.5)})
		if len(got) != 1 {
			t.Errorf("Search(min 0.5) returned %d entries, want 1", len(got))
		}
		got, _ = h.svc.Search(ctx, "u1", tm.Query{SourceLanguage: "en", Text: "hello"})
		if len(got) != 0 {
			t.Errorf("Search(default min) returned %d entries, want 0", len(got))
		}
		h.svc.SetMinConfidence(0.4)
		got, _ = h.svc.Search(ctx, "u1", tm.Query{SourceLanguage: "en", Text: "hello"})
		if len(got) != 1 {
			t.Errorf("Search(configured min 0.4) returned %d entries, want 1", len(got))
		}
	})

	t.Run("other users' entries are never returned", func(t *testing.T) {
		h := newHarness(t)
		h.addEntry(t, "u2", "en", "hello world", 1)

		got, _ := h.svc.Search(ctx, "u1", tm.Query{UserID: "u2", SourceLanguage: "en", Text: "hello"})
		if len(got) != 0 {
			t.Errorf("Search() leaked %d entries of another user", len(got))
		}
	})

	t.Run("ranking by confidence", func(t *testing.T) {
		h := newHarness(t)
		for _, c := range []float64{0.95, 0.72, 0.81} {
			h.addEntry(t, "u1", "en", "save the file", c)
		}

		got, _ := h.svc.Search(ctx, "u1", tm.Query{SourceLanguage: "en", Text: "Save"})
		var confs []float64
		for _, e := range got {
			confs = append(confs, e.Confidence)
		}
		if len(confs) != 3 || confs[0] != 0.95 || confs[1] != 0.81 || confs[2] != 0.72 {
			t.Errorf("confidences = %v, want [0.95 0.81 0.72]", confs)
		}
	})

	t.Run("entry is a fragment of the query", func(t *testing.T) {
		h := newHarness(t)
		a := h.addEntry(t, "u1", "en", "Cancel", 0.9)
		h.addEntry(t, "u1", "de", "Cancel", 0.9)

		got, _ := h.svc.Search(ctx, "u1", tm.Query{SourceLanguage: "en", Text: "press CANCEL to stop"})
		if len(got) != 1 || got[0].ID != a.ID {
			t.Errorf("Search() = %v, want [%s]", entryIDs(got), a.ID)
		}
	})
}

func TestService_PromoteAndSuggest(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	doc := h.createDoc(t, "alice", "Bonjour le monde", "Bonjour")
	first, second := doc.Segments[0].ID, doc.Segments[1].ID

	if _, err := h.svc.PromoteSegment(ctx, "alice", doc.ID, first, nil); !errors.Is(err, model.ErrValidation) {
		t.Errorf("PromoteSegment() without target error = %v, want ErrValidation", err)
	}

	if _, err := h.svc.UpdateSegmentTarget(ctx, "alice", doc.ID, first, strPtr("Hello world")); err != nil {
		t.Fatalf("UpdateSegmentTarget() error = %v", err)
	}
	entry, err := h.svc.PromoteSegment(ctx, "alice", doc.ID, first, f64Ptr(0.9))
	if err != nil {
		t.Fatalf("PromoteSegment() error = %v", err)
	}
	if entry.SourceLanguage != "fr" || entry.TargetLanguage != "en" || entry.SourceText != "Bonjour le monde" {
		t.Errorf("promoted entry = %+v", entry)
	}
	if entry.DocumentID == nil || *entry.DocumentID != doc.ID {
		t.Errorf("DocumentID = %v, want %s", entry.DocumentID, doc.ID)
	}

	// A pair in another target language must not be suggested.
	if _, err := h.svc.CreateEntry(ctx, "alice", sbs.EntryRequest{
		SourceLanguage: "fr", TargetLanguage: "de", SourceText: "Bonjour", TargetText: "Hallo",
	}); err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}

	h.clock.Advance(time.Hour)
	suggestion, err := h.svc.Suggest(ctx, "alice", doc.ID, second)
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if suggestion == nil || suggestion.ID != entry.ID {
		t.Fatalf("Suggest() = %+v, want entry %s", suggestion, entry.ID)
	}

	stored, _ := h.svc.GetEntry(ctx, "alice", entry.ID)
	if stored.UseCount != 1 {
		t.Errorf("UseCount = %d, want 1", stored.UseCount)
	}
	if !stored.UpdatedAt.Equal(h.clock.Now()) || !stored.UpdatedAt.After(entry.CreatedAt) {
		t.Errorf("UpdatedAt = %v, want %v after a suggestion", stored.UpdatedAt, h.clock.Now())
	}

	other := h.createDoc(t, "alice", "Rien à voir")
	none, err := h.svc.Suggest(ctx, "alice", other.ID, other.Segments[0].ID)
	if err != nil || none != nil {
		t.Errorf("Suggest() without match = %+v, %v; want nil, nil", none, err)
	}
}

const sampleTMX = `<?xml version="1.0" encoding="UTF-8"?>
<tmx version="1.4">
  <header srclang="en" datatype="plaintext" segtype="sentence" adminlang="en" creationtool="test" creationtoolversion="1" o-tmf="test"/>
  <body>
    <tu>
      <note>menu item</note>
      <tuv xml:lang="en-US"><seg>Open file</seg></tuv>
      <tuv xml:lang="fr-FR"><seg>Ouvrir le fichier</seg></tuv>
    </tu>
    <tu>
      <prop type="x-confidence">0.6</prop>
      <tuv xml:lang="en"><seg>Close</seg></tuv>
      <tuv xml:lang="fr"><seg>Fermer</seg></tuv>
    </tu>
    <tu>
      <tuv xml:lang="en"><seg>Only English</seg></tuv>
    </tu>
  </body>
</tmx>`

func TestService_ImportTMX(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	n, err := h.svc.ImportTMX(ctx, "alice", strings.NewReader(sampleTMX), "en", "fr", f64Ptr(0.85))
	if err != nil {
		t.Fatalf("ImportTMX() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("ImportTMX() = %d entries, want 2", n)
	}

	entries, err := h.svc.ListEntries(ctx, "alice")
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ListEntries() returned %d entries, want 2", len(entries))
	}
	if entries[0].SourceText != "Open file" || entries[0].Confidence != 0.85 {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[0].Context == nil || *entries[0].Context != "menu item" {
		t.Errorf("first entry context = %v, want menu item", entries[0].Context)
	}
	if entries[1].Confidence != 0.6 {
		t.Errorf("second entry confidence = %v, want the unit's own 0.6", entries[1].Confidence)
	}

	if _, err := h.svc.ImportTMX(ctx, "alice", strings.NewReader("<xliff/>"), "en", "fr", nil); !errors.Is(err, model.ErrValidation) {
		t.Errorf("ImportTMX(not tmx) error = %v, want ErrValidation", err)
	}
}
