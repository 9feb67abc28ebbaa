package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

type eventStore struct {
	db *gorm.DB
}

// NewEventStore creates a new EventStore backed by the events table.
func NewEventStore(db *gorm.DB) repository.EventStore {
	return &eventStore{db: db}
}

func (s *eventStore) SaveEvents(ctx context.Context, streamID string, streamType string, expectedVersion int, events []entity.Event) error {
	if len(events) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Check concurrency
		currentVersion, err := streamVersion(tx, streamID)
		if err != nil {
			return err
		}
		if currentVersion != expectedVersion {
			return fmt.Errorf("%w: expected version %d, got %d", repository.ErrConflict, expectedVersion, currentVersion)
		}

		version := expectedVersion
		now := time.Now().UTC()
		records := make([]entity.EventRecord, 0, len(events))
		for _, event := range events {
			version++
			payload, err := json.Marshal(event)
			if err != nil {
				return fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
			}
			records = append(records, entity.EventRecord{
				ID:         uuid.NewString(),
				StreamID:   streamID,
				StreamType: streamType,
				Version:    version,
				EventType:  event.EventType(),
				Payload:    payload,
				CreatedAt:  now,
			})
		}

		if err := tx.Create(&records).Error; err != nil {
			return fmt.Errorf("failed to insert events: %w", translate(err))
		}
		return nil
	})
}

func (s *eventStore) LoadEvents(ctx context.Context, streamID string) ([]entity.EventRecord, error) {
	var records []entity.EventRecord
	err := s.db.WithContext(ctx).Where("stream_id = ?", streamID).Order("version ASC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load events for stream %s: %w", streamID, err)
	}
	return records, nil
}

func (s *eventStore) StreamVersion(ctx context.Context, streamID string) (int, error) {
	return streamVersion(s.db.WithContext(ctx), streamID)
}

func streamVersion(db *gorm.DB, streamID string) (int, error) {
	var v int
	err := db.Model(&entity.EventRecord{}).Select("COALESCE(MAX(version), 0)").
		Where("stream_id = ?", streamID).Scan(&v).Error
	if err != nil {
		return 0, fmt.Errorf("failed to get current stream version: %w", err)
	}
	return v, nil
}
