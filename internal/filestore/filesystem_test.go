package filestore

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSystemBackend(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	b, err := NewFileSystemBackend(root)
	if err != nil {
		t.Fatalf("NewFileSystemBackend() error = %v", err)
	}

	key := "ab12cd"
	if ok, err := b.Exists(ctx, key); err != nil || ok {
		t.Fatalf("Exists() before Put = %v, %v; want false, nil", ok, err)
	}

	if err := b.Put(ctx, key, strings.NewReader("hello"), 5); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "blobs", "ab", key)); err != nil {
		t.Errorf("blob not stored in its shard directory: %v", err)
	}
	if ok, err := b.Exists(ctx, key); err != nil || !ok {
		t.Errorf("Exists() after Put = %v, %v; want true, nil", ok, err)
	}

	var out bytes.Buffer
	if err := b.Get(ctx, key, &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out.String() != "hello" {
		t.Errorf("Get() = %q, want %q", out.String(), "hello")
	}

	if err := b.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := b.Delete(ctx, key); err != nil {
		t.Errorf("Delete() of missing key error = %v, want nil", err)
	}
	if err := b.Get(ctx, key, &out); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
	}
}

func TestFileSystemBackend_SizeMismatch(t *testing.T) {
	b, err := NewFileSystemBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemBackend() error = %v", err)
	}

	err = b.Put(context.Background(), "k1", strings.NewReader("short"), 99)
	if err == nil {
		t.Fatal("Put() with wrong size should fail")
	}
	if ok, _ := b.Exists(context.Background(), "k1"); ok {
		t.Error("failed Put() left a blob behind")
	}
}
