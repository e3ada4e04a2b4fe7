package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"propdesk-service/internal/domain/entity"
	"propdesk-service/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAdminRepository implements the AdminRepository interface
type GormAdminRepository struct {
	db *gorm.DB
}

// NewGormAdminRepository creates a new GORM admin repository
func NewGormAdminRepository(db *gorm.DB) repository.AdminRepository {
	return &GormAdminRepository{
		db: db,
	}
}

// AdminUser GORM model for database mapping
type AdminUser struct {
	UID        string          `gorm:"column:uid;primaryKey"`
	Name       string          `gorm:"column:name"`
	Email      string          `gorm:"column:email;index"`
	Role       string          `gorm:"column:role"`
	Properties []AdminProperty `gorm:"foreignKey:AdminUID;references:UID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName overrides the default table name
func (AdminUser) TableName() string {
	return "admin_users"
}

// AdminProperty links an admin to a property they administer
type AdminProperty struct {
	AdminUID   string `gorm:"column:admin_uid;primaryKey"`
	PropertyID string `gorm:"column:property_id;primaryKey"`
	Position   int    `gorm:"column:position"`
}

// TableName overrides the default table name
func (AdminProperty) TableName() string {
	return "admin_properties"
}

// AdminModels lists the models to migrate.
func AdminModels() []interface{} {
	return []interface{}{&AdminUser{}, &AdminProperty{}}
}

// GetByUID loads a profile with its property list
func (r *GormAdminRepository) GetByUID(ctx context.Context, uid string) (*entity.AdminProfile, error) {
	var user AdminUser
	result := r.db.WithContext(ctx).
		Preload("Properties", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("uid = ?", uid).
		First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("admin %s: %w", uid, entity.ErrNotFound)
		}
		return nil, result.Error
	}

	// Convert GORM model to domain entity
	profile := &entity.AdminProfile{
		UID:     user.UID,
		Name:    user.Name,
		Email:   user.Email,
		Role:    user.Role,
		AdminOf: make([]string, 0, len(user.Properties)),
	}
	for _, p := range user.Properties {
		profile.AdminOf = append(profile.AdminOf, p.PropertyID)
	}
	return profile, nil
}

// Upsert writes a profile and replaces its property list
func (r *GormAdminRepository) Upsert(ctx context.Context, profile *entity.AdminProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := AdminUser{
			UID:   profile.UID,
			Name:  profile.Name,
			Email: profile.Email,
			Role:  profile.Role,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "email", "role", "updated_at"}),
		}).Omit("Properties").Create(&user).Error
		if err != nil {
			return err
		}

		if err := tx.Where("admin_uid = ?", profile.UID).Delete(&AdminProperty{}).Error; err != nil {
			return err
		}
		if len(profile.AdminOf) == 0 {
			return nil
		}
		links := make([]AdminProperty, 0, len(profile.AdminOf))
		for i, pid := range profile.AdminOf {
			links = append(links, AdminProperty{AdminUID: profile.UID, PropertyID: pid, Position: i})
		}
		return tx.Create(&links).Error
	})
}
