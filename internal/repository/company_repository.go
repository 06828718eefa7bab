package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"invoicing-service/internal/models"
)

// CompanyCacheTTL bounds how long a company profile is served from Redis
const CompanyCacheTTL = 10 * time.Minute

// CompanyRepository stores company profiles, cached per owner in Redis
type CompanyRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewCompanyRepository creates a new CompanyRepository. redis may be nil.
func NewCompanyRepository(db *gorm.DB, redis *redis.Client) *CompanyRepository {
	return &CompanyRepository{db: db, redis: redis}
}

func companyCacheKey(ownerID string) string {
	return fmt.Sprintf("invoicing:company:%s", ownerID)
}

// GetByOwner returns the owner's company profile
func (r *CompanyRepository) GetByOwner(ctx context.Context, ownerID string) (*models.Company, error) {
	cacheKey := companyCacheKey(ownerID)
	if r.redis != nil {
		if val, err := r.redis.Get(ctx, cacheKey).Result(); err == nil {
			var company models.Company
			if err := json.Unmarshal([]byte(val), &company); err == nil {
				return &company, nil
			}
		}
	}

	var company models.Company
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&company).Error; err != nil {
		return nil, translate(err)
	}

	if r.redis != nil {
		if data, err := json.Marshal(company); err == nil {
			_ = r.redis.Set(ctx, cacheKey, data, CompanyCacheTTL).Err()
		}
	}
	return &company, nil
}

// Upsert creates or replaces the owner's company profile
func (r *CompanyRepository) Upsert(ctx context.Context, company *models.Company) error {
	var existing models.Company
	err := r.db.WithContext(ctx).Where("owner_id = ?", company.OwnerID).First(&existing).Error
	switch {
	case err == nil:
		company.ID = existing.ID
		company.CreatedAt = existing.CreatedAt
		err = r.db.WithContext(ctx).Save(company).Error
	case translate(err) == ErrNotFound:
		err = r.db.WithContext(ctx).Create(company).Error
	}
	if err != nil {
		return err
	}

	if r.redis != nil {
		_ = r.redis.Del(ctx, companyCacheKey(company.OwnerID)).Err()
	}
	return nil
}
