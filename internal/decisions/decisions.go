package decisions

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Status string

const (
	StatusUndecided Status = "undecided"
	StatusDecided   Status = "decided"
	StatusLocked    Status = "locked"
)

// Catalog is the fixed set of planning decisions every tenant gets.
var Catalog = []string{
	"venue",
	"catering",
	"photography",
	"videography",
	"florals",
	"music",
	"attire",
	"invitations",
	"cake",
	"transportation",
}

type Decision struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement" json:"-"`
	TenantID uint64 `gorm:"not null;uniqueIndex:uniq_tenant_category,priority:1" json:"-"`
	Category string `gorm:"type:varchar(64);not null;uniqueIndex:uniq_tenant_category,priority:2" json:"category"`
	Name     string `gorm:"type:varchar(255)" json:"name,omitempty"`
	Status   Status `gorm:"type:varchar(16);not null" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Decision) TableName() string { return "decisions" }

type Progress struct {
	Total           int `json:"total"`
	Decided         int `json:"decided"`
	Locked          int `json:"locked"`
	PercentComplete int `json:"percent_complete"`
}

type Tracker struct {
	db *gorm.DB
}

func NewTracker(db *gorm.DB) *Tracker {
	return &Tracker{db: db}
}

// Initialize seeds the catalog for a tenant. Calling it again is a no-op.
func (t *Tracker) Initialize(ctx context.Context, tenantID uint64) error {
	var count int64
	if err := t.db.WithContext(ctx).Model(&Decision{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	rows := make([]Decision, 0, len(Catalog))
	for _, cat := range Catalog {
		rows = append(rows, Decision{
			TenantID: tenantID,
			Category: cat,
			Status:   StatusUndecided,
		})
	}
	return t.db.WithContext(ctx).Create(&rows).Error
}

func (t *Tracker) All(ctx context.Context, tenantID uint64) ([]Decision, error) {
	var rows []Decision
	if err := t.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (t *Tracker) Progress(ctx context.Context, tenantID uint64) (Progress, error) {
	rows, err := t.All(ctx, tenantID)
	if err != nil {
		return Progress{}, err
	}

	p := Progress{Total: len(rows)}
	for _, d := range rows {
		switch d.Status {
		case StatusDecided:
			p.Decided++
		case StatusLocked:
			p.Decided++
			p.Locked++
		}
	}
	if p.Total > 0 {
		p.PercentComplete = int(math.Round(float64(p.Decided) / float64(p.Total) * 100))
	}
	return p, nil
}

// Update flips name and/or status for one category. An empty name or status
// leaves the current value.
func (t *Tracker) Update(ctx context.Context, tenantID uint64, category string, name string, status Status) (*Decision, error) {
	category = strings.ToLower(strings.TrimSpace(category))

	var d Decision
	if err := t.db.WithContext(ctx).
		Where("tenant_id = ? AND category = ?", tenantID, category).
		First(&d).Error; err != nil {
		return nil, err
	}

	if name != "" {
		d.Name = name
	}
	if status != "" {
		switch status {
		case StatusUndecided, StatusDecided, StatusLocked:
			d.Status = status
		default:
			return nil, fmt.Errorf("decisions: unknown status %q", status)
		}
	}

	if err := t.db.WithContext(ctx).Save(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// SummaryLines renders decision state for the kernel fact snapshot.
func SummaryLines(rows []Decision) []string {
	var out []string
	for _, d := range rows {
		if d.Status == StatusUndecided {
			continue
		}
		line := d.Category
		if d.Name != "" {
			line += ": " + d.Name
		}
		line += " (" + string(d.Status) + ")"
		out = append(out, line)
	}
	return out
}
