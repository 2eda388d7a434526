package encryption

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"sbs-go/internal/config"
)

func newTestAgeEncryptor(t *testing.T) *AgeEncryptor {
	t.Helper()
	dir := t.TempDir()
	cfg := config.EncryptionConfig{
		PublicKeyPath:  filepath.Join(dir, "keys", "sbs.pub"),
		PrivateKeyPath: filepath.Join(dir, "keys", "sbs.key"),
	}
	return NewAgeEncryptor(cfg)
}

func TestAgeEncryptor_Setup(t *testing.T) {
	t.Parallel()
	e := newTestAgeEncryptor(t)

	if e.IsConfigured() {
		t.Error("IsConfigured() = true before Setup, want false")
	}
	if err := e.Setup(); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if !e.IsConfigured() {
		t.Error("IsConfigured() = false after Setup, want true")
	}

	info, err := os.Stat(e.privateKeyPath)
	if err != nil {
		t.Fatalf("Stat(private key) error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("private key permissions = %o, want 600", perm)
	}

	if err := e.Setup(); err == nil {
		t.Error("second Setup() should refuse to overwrite existing keys")
	}
}

func TestAgeEncryptor_EncryptDecryptRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "simple text", input: []byte("Bonjour le monde")},
		{name: "empty", input: []byte{}},
		{name: "binary data", input: []byte{0x00, 0xff, 0x01, 0xfe}},
		{name: "large data", input: bytes.Repeat([]byte("abcdef"), 10000)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := newTestAgeEncryptor(t)
			if err := e.Setup(); err != nil {
				t.Fatalf("Setup() error = %v", err)
			}

			var encrypted bytes.Buffer
			if err := e.Encrypt(bytes.NewReader(tt.input), &encrypted); err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if len(tt.input) > 0 && bytes.Contains(encrypted.Bytes(), tt.input) {
				t.Error("encrypted output contains the plaintext")
			}

			var decrypted bytes.Buffer
			if err := e.Decrypt(bytes.NewReader(encrypted.Bytes()), &decrypted); err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(decrypted.Bytes(), tt.input) {
				t.Errorf("round-trip failed: got %d bytes, want %d bytes", decrypted.Len(), len(tt.input))
			}
		})
	}
}

func TestAgeEncryptor_DecryptWithOtherKey(t *testing.T) {
	t.Parallel()

	a := newTestAgeEncryptor(t)
	b := newTestAgeEncryptor(t)
	for _, e := range []*AgeEncryptor{a, b} {
		if err := e.Setup(); err != nil {
			t.Fatalf("Setup() error = %v", err)
		}
	}

	var encrypted bytes.Buffer
	if err := a.Encrypt(bytes.NewReader([]byte("secret")), &encrypted); err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	var out bytes.Buffer
	if err := b.Decrypt(bytes.NewReader(encrypted.Bytes()), &out); err == nil {
		t.Error("Decrypt() with a different identity should fail")
	}
}

func TestAgeEncryptor_BeforeSetup(t *testing.T) {
	t.Parallel()

	e := newTestAgeEncryptor(t)
	var buf bytes.Buffer
	if err := e.Encrypt(bytes.NewReader([]byte("data")), &buf); err == nil {
		t.Error("Encrypt() before Setup should return error")
	}
	if err := e.Decrypt(bytes.NewReader([]byte("data")), &buf); err == nil {
		t.Error("Decrypt() before Setup should return error")
	}
}
