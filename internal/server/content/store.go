// Package content stores file bytes addressed by opaque keys. Backends:
// local filesystem, S3-compatible object storage and process memory.
package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/filesmanager/internal/common"
)

// ErrContentNotFound is returned by Read when nothing is stored under a key.
var ErrContentNotFound = errors.New("content not found")

// Store writes and reads whole blobs. Write overwrites existing content and
// creates the backing namespace (directory, bucket) on demand.
type Store interface {
	Write(ctx context.Context, key string, data []byte) error
	Read(ctx context.Context, key string) ([]byte, error)
	Ping(ctx context.Context) error
}

// DerivativeKey is the key of the width-sized variant of key.
func DerivativeKey(key string, width string) string {
	return key + "_" + width
}

// ValidateKey rejects keys that could escape a flat namespace.
func ValidateKey(key string) error {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, "/\\\x00") {
		return fmt.Errorf("%q: %w", key, common.ErrInvalidKey)
	}
	return nil
}
