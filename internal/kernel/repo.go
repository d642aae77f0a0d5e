package kernel

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// GetOrCreate returns the tenant's kernel, creating the singleton lazily.
func (r *Repo) GetOrCreate(ctx context.Context, tenantID uint64) (*Kernel, error) {
	var k Kernel
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&k).Error
	if err == nil {
		return &k, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	k = Kernel{TenantID: tenantID}
	if err := r.db.WithContext(ctx).Create(&k).Error; err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *Repo) Get(ctx context.Context, tenantID uint64) (*Kernel, error) {
	var k Kernel
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&k).Error; err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *Repo) Save(ctx context.Context, k *Kernel) error {
	return r.db.WithContext(ctx).Save(k).Error
}

// WithTx returns a Repo bound to tx, for callers composing the kernel write
// with other writes in one transaction.
func (r *Repo) WithTx(tx *gorm.DB) *Repo {
	return &Repo{db: tx}
}
