package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

// headerEncryptor marks sealed data with a prefix; enough to see that the
// store encrypts and decrypts around the backend.
type headerEncryptor struct{}

func (headerEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := io.WriteString(w, "SEALED:"); err != nil {
		return err
	}
	_, err := io.Copy(w, r)
	return err
}

func (headerEncryptor) Decrypt(r io.Reader, w io.Writer) error {
	head := make([]byte, len("SEALED:"))
	if _, err := io.ReadFull(r, head); err != nil {
		return err
	}
	if string(head) != "SEALED:" {
		return fmt.Errorf("not sealed")
	}
	_, err := io.Copy(w, r)
	return err
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	content := strings.Repeat("Bonjour le monde. ", 200)

	for _, tt := range []struct {
		name string
		enc  Encryptor
	}{
		{name: "compressed only", enc: nil},
		{name: "compressed and sealed", enc: headerEncryptor{}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			backend := NewMemoryBackend()
			store := NewStore(backend, tt.enc)

			id, size, err := store.Put(ctx, strings.NewReader(content))
			if err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			if size != int64(len(content)) {
				t.Errorf("Put() size = %d, want %d", size, len(content))
			}
			if len(id) != 64 {
				t.Errorf("Put() id = %q, want 64 hex characters", id)
			}

			raw, ok := backend.Raw(id)
			if !ok {
				t.Fatalf("backend has no blob under %s", id)
			}
			if bytes.Contains(raw, []byte("Bonjour")) {
				t.Error("stored blob contains plaintext")
			}
			if tt.enc != nil && !bytes.HasPrefix(raw, []byte("SEALED:")) {
				t.Error("stored blob was not passed through the encryptor")
			}

			var out bytes.Buffer
			if err := store.Get(ctx, id, &out); err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if out.String() != content {
				t.Errorf("Get() returned %d bytes, want %d", out.Len(), len(content))
			}
		})
	}
}

func TestStore_PutIsContentAddressed(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := NewStore(backend, nil)

	a, _, err := store.Put(ctx, strings.NewReader("same"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	b, _, err := store.Put(ctx, strings.NewReader("same"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	c, _, err := store.Put(ctx, strings.NewReader("different"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if a != b {
		t.Errorf("identical content got different ids: %s, %s", a, b)
	}
	if a == c {
		t.Error("different content got the same id")
	}
	if backend.Len() != 2 {
		t.Errorf("backend holds %d blobs, want 2", backend.Len())
	}
}

func TestStore_DeleteAndMissing(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryBackend(), nil)

	id, _, err := store.Put(ctx, strings.NewReader("gone soon"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, id); err != nil {
		t.Errorf("second Delete() error = %v, want nil", err)
	}

	err = store.Get(ctx, id, io.Discard)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
	}
}
