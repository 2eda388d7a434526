package encryption

import (
	"fmt"

	"sbs-go/internal/config"
	"sbs-go/internal/filestore"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration
// type. Type "none" returns nil: originals are stored compressed only.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (filestore.Encryptor, error) {
	switch cfg.Type {
	case "age", "":
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
