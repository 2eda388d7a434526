// Package filestore keeps the original files users import. Content is
// addressed by the BLAKE3 hash of its plaintext, compressed with xz and,
// when an Encryptor is configured, sealed before it reaches a Backend.
package filestore

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"sbs-go/internal/sbs"
)

// ErrNotFound is returned by backends when a key holds no content.
var ErrNotFound = errors.New("content not found")

// Backend stores opaque blobs by key.
type Backend interface {
	Put(ctx context.Context, key string, r io.Reader, size int64) error
	Get(ctx context.Context, key string, w io.Writer) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Encryptor seals and opens stored blobs.
type Encryptor interface {
	Encrypt(r io.Reader, w io.Writer) error
	Decrypt(r io.Reader, w io.Writer) error
}

// Store implements sbs.FileStore on top of a Backend.
type Store struct {
	backend   Backend
	encryptor Encryptor // nil stores compressed plaintext
}

var _ sbs.FileStore = (*Store)(nil)

// NewStore creates a Store. encryptor may be nil.
func NewStore(backend Backend, encryptor Encryptor) *Store {
	return &Store{backend: backend, encryptor: encryptor}
}

// Put stores the content of r and returns its address and plaintext size.
// Content that is already stored is not written again.
func (s *Store) Put(ctx context.Context, r io.Reader) (string, int64, error) {
	hasher := blake3.New()
	counter := &countingReader{r: io.TeeReader(r, hasher)}

	var compressed bytes.Buffer
	xw, err := xz.NewWriter(&compressed)
	if err != nil {
		return "", 0, fmt.Errorf("creating xz writer: %w", err)
	}
	if _, err := io.Copy(xw, counter); err != nil {
		return "", 0, fmt.Errorf("compressing content: %w", err)
	}
	if err := xw.Close(); err != nil {
		return "", 0, fmt.Errorf("finalizing compression: %w", err)
	}

	fileID := hex.EncodeToString(hasher.Sum(nil))
	exists, err := s.backend.Exists(ctx, fileID)
	if err != nil {
		return "", 0, fmt.Errorf("checking for existing content: %w", err)
	}
	if exists {
		return fileID, counter.n, nil
	}

	sealed := &compressed
	if s.encryptor != nil {
		sealed = &bytes.Buffer{}
		if err := s.encryptor.Encrypt(&compressed, sealed); err != nil {
			return "", 0, fmt.Errorf("encrypting content: %w", err)
		}
	}
	if err := s.backend.Put(ctx, fileID, sealed, int64(sealed.Len())); err != nil {
		return "", 0, fmt.Errorf("storing content %s: %w", fileID, err)
	}
	return fileID, counter.n, nil
}

// Get writes the plaintext stored under fileID to w.
func (s *Store) Get(ctx context.Context, fileID string, w io.Writer) error {
	var sealed bytes.Buffer
	if err := s.backend.Get(ctx, fileID, &sealed); err != nil {
		return fmt.Errorf("reading content %s: %w", fileID, err)
	}

	compressed := &sealed
	if s.encryptor != nil {
		compressed = &bytes.Buffer{}
		if err := s.encryptor.Decrypt(&sealed, compressed); err != nil {
			return fmt.Errorf("decrypting content %s: %w", fileID, err)
		}
	}

	xr, err := xz.NewReader(compressed)
	if err != nil {
		return fmt.Errorf("creating xz reader: %w", err)
	}
	if _, err := io.Copy(w, xr); err != nil {
		return fmt.Errorf("decompressing content %s: %w", fileID, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, fileID string) error {
	if err := s.backend.Delete(ctx, fileID); err != nil {
		return fmt.Errorf("deleting content %s: %w", fileID, err)
	}
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
