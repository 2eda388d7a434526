package testutil

import "sync"

// RecordingDispatcher remembers the documents it was asked to process and
// does nothing else. Tests run processing explicitly.
type RecordingDispatcher struct {
	mu  sync.Mutex
	ids []string
}

func NewRecordingDispatcher() *RecordingDispatcher {
	return &RecordingDispatcher{}
}

func (d *RecordingDispatcher) ProcessDocument(documentID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, documentID)
}

// Dispatched returns the document IDs in dispatch order.
func (d *RecordingDispatcher) Dispatched() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.ids...)
}
