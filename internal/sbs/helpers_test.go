package sbs_test

import (
	"context"
	"strings"
	"testing"

	"sbs-go/internal/database"
	"sbs-go/internal/filestore"
	"sbs-go/internal/model"
	"sbs-go/internal/sbs"
	"sbs-go/internal/testutil"
)

type harness struct {
	svc        *sbs.Service
	store      *database.SQLiteStore
	backend    *filestore.MemoryBackend
	dispatcher *testutil.RecordingDispatcher
	clock      *testutil.StubClock
	logger     *testutil.RecordingLogger
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := testutil.NewTestStore(t)
	files, backend := testutil.NewTestFileStore()
	h := &harness{
		store:      store,
		backend:    backend,
		dispatcher: testutil.NewRecordingDispatcher(),
		clock:      testutil.FixedClock(),
		logger:     testutil.NewRecordingLogger(),
	}
	h.svc = sbs.NewService(store.Documents(), store.Memory(), files, h.dispatcher,
		h.logger, h.clock, testutil.NewStubIDGenerator())
	return h
}

func strPtr(s string) *string { return &s }
func f64Ptr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool { return &b }

// createDoc stores a Completed document with one segment per source text.
func (h *harness) createDoc(t *testing.T, userID string, sources ...string) *model.Document {
	t.Helper()
	req := sbs.CreateRequest{
		Name:           "Doc",
		FileType:       "txt",
		SourceLanguage: "fr",
		TargetLanguage: "en",
	}
	for _, src := range sources {
		req.Segments = append(req.Segments, sbs.SegmentInput{SourceText: src})
	}
	doc, err := h.svc.CreateDocument(context.Background(), userID, req)
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	return doc
}

// importText imports content as a file and returns the Pending document.
func (h *harness) importText(t *testing.T, userID, fileName, content string) *model.Document {
	t.Helper()
	doc, err := h.svc.ImportDocument(context.Background(), userID, sbs.ImportRequest{
		FileName:       fileName,
		SourceLanguage: "fr",
		TargetLanguage: "en",
		Content:        strings.NewReader(content),
	})
	if err != nil {
		t.Fatalf("ImportDocument() error = %v", err)
	}
	return doc
}
