package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/router-for-me/MailRelayGateway/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GormStore keeps the collection as a single versioned JSON row. The
// version marker is a content hash; Save is a conditioned update that
// rewrites the row only while the stored hash still matches. The change
// description is logged by the caller rather than persisted; relational
// rows carry no commit annotation.
type GormStore struct {
	db  *gorm.DB
	key string

	mu sync.Mutex
}

// NewGormStore constructs a GormStore for the given document key.
func NewGormStore(db *gorm.DB, key string) *GormStore {
	return &GormStore{db: db, key: key}
}

// Load reads the document row. A missing row yields an empty collection
// with an empty version marker, so the first Save creates it.
func (s *GormStore) Load(ctx context.Context) (models.Collection, string, error) {
	if s == nil || s.db == nil {
		return nil, "", fmt.Errorf("gorm store: not initialized")
	}

	var doc models.Document
	errFind := s.db.WithContext(ctx).Where("key = ?", s.key).First(&doc).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return models.Collection{}, "", nil
		}
		return nil, "", fmt.Errorf("%w: gorm find: %v", ErrUnavailable, errFind)
	}

	users, errDecode := decodeCollection(doc.Content)
	if errDecode != nil {
		return nil, "", errDecode
	}
	return users, doc.Version, nil
}

// Save writes the document back conditioned on the stored version hash.
func (s *GormStore) Save(ctx context.Context, users models.Collection, version, _ string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("gorm store: not initialized")
	}

	data, errEncode := encodeCollection(users)
	if errEncode != nil {
		return errEncode
	}
	next := contentHash(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if version == "" {
		record := models.Document{
			Key:       s.key,
			Content:   datatypes.JSON(data),
			Version:   next,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if errCreate := s.db.WithContext(ctx).Create(&record).Error; errCreate != nil {
			// A concurrent first writer already inserted the row.
			var count int64
			if s.db.WithContext(ctx).Model(&models.Document{}).Where("key = ?", s.key).Count(&count); count > 0 {
				return fmt.Errorf("%w: document created concurrently", ErrConflict)
			}
			return fmt.Errorf("%w: gorm create: %v", ErrUnavailable, errCreate)
		}
		return nil
	}

	res := s.db.WithContext(ctx).Model(&models.Document{}).
		Where("key = ? AND version = ?", s.key, version).
		Updates(map[string]any{
			"content":    datatypes.JSON(data),
			"version":    next,
			"updated_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("%w: gorm update: %v", ErrUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: document changed since load", ErrConflict)
	}
	return nil
}
