// Package analytics holds the ingested public event rows. Events arrive
// through the rate-limited HTTP path, ride the queue, and are inserted here
// by the worker.
package analytics

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Event struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	EventID    string    `gorm:"type:varchar(26);uniqueIndex;not null" json:"event_id"`
	SessionID  string    `gorm:"type:varchar(64);index;not null" json:"session_id"`
	EventType  string    `gorm:"type:varchar(64);not null" json:"event_type"`
	Page       string    `gorm:"type:varchar(255)" json:"page,omitempty"`
	Metadata   string    `gorm:"type:text" json:"-"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Event) TableName() string { return "analytics_events" }

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Insert stores one event. The unique event id makes redelivered queue
// messages harmless.
func (r *Repo) Insert(ctx context.Context, e *Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *Repo) Exists(ctx context.Context, eventID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Event{}).
		Where("event_id = ?", eventID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
