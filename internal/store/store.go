// Package store persists the user collection as one JSON document behind a
// narrow load/save contract. Every mutation is a wholesale read-modify-write
// conditioned on an opaque version marker; a concurrent writer makes the
// losing save fail with ErrConflict, which callers surface rather than
// retry.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/router-for-me/MailRelayGateway/internal/models"
)

// Sentinel errors surfaced by all backends.
var (
	// ErrConflict indicates the version marker no longer matches; the
	// caller's read-modify-write lost a race and may be retried by the client.
	ErrConflict = errors.New("store: version conflict")
	// ErrNotFound indicates the document does not exist yet.
	ErrNotFound = errors.New("store: document not found")
	// ErrUnavailable indicates the backing host is unreachable or answered
	// with a non-success status.
	ErrUnavailable = errors.New("store: unavailable")
)

// Store reads and writes the entire user collection wholesale. Load returns
// the collection with an opaque version marker; Save writes it back only if
// the marker still matches, recording message as the change description.
type Store interface {
	Load(ctx context.Context) (models.Collection, string, error)
	Save(ctx context.Context, users models.Collection, version, message string) error
}

// encodeCollection serializes the collection the way the stored document is
// kept: indented, so the remote file stays reviewable.
func encodeCollection(users models.Collection) ([]byte, error) {
	if users == nil {
		users = models.Collection{}
	}
	data, errMarshal := json.MarshalIndent(users, "", "  ")
	if errMarshal != nil {
		return nil, fmt.Errorf("store: encode collection: %w", errMarshal)
	}
	return data, nil
}

// decodeCollection parses a stored document body.
func decodeCollection(data []byte) (models.Collection, error) {
	var users models.Collection
	if errUnmarshal := json.Unmarshal(data, &users); errUnmarshal != nil {
		return nil, fmt.Errorf("store: decode collection: %w", errUnmarshal)
	}
	return users, nil
}

// contentHash derives the version marker used by the backends that have no
// native one of their own.
func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
