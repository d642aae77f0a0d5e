package planning

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrVersionConflict means the page changed between this writer's read and
// its write. The caller re-reads and retries, or reports the conflict.
var ErrVersionConflict = errors.New("planning: page version conflict")

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// GetOrCreate returns the tenant's page for kind, creating an empty one on
// first touch.
func (r *Repo) GetOrCreate(ctx context.Context, tenantID uint64, kind string) (*Page, error) {
	var p Page
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND kind = ?", tenantID, kind).
		First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	p = Page{TenantID: tenantID, Kind: kind, Fields: "[]", Version: 1}
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Save writes the page blob guarded by the version the caller read. On
// success the in-memory version is bumped; a stale version returns
// ErrVersionConflict and writes nothing.
func (r *Repo) Save(ctx context.Context, p *Page) error {
	res := r.db.WithContext(ctx).Model(&Page{}).
		Where("id = ? AND version = ?", p.ID, p.Version).
		Updates(map[string]any{
			"fields":  p.Fields,
			"version": p.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	p.Version++
	return nil
}
