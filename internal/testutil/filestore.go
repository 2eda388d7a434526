package testutil

import (
	"sbs-go/internal/encryption"
	"sbs-go/internal/filestore"
)

// NewTestFileStore creates a file store over an in-memory backend, sealed
// with the deterministic test encryptor. The backend is returned for
// inspection.
func NewTestFileStore() (*filestore.Store, *filestore.MemoryBackend) {
	backend := filestore.NewMemoryBackend()
	return filestore.NewStore(backend, encryption.NewTestEncryptor()), backend
}
