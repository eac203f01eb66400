package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/repositories"
	"gorm.io/gorm"
)

type AdminPostgreSQL struct {
	db *gorm.DB
}

func NewAdminPostgreSQL(db *gorm.DB) repositories.AdminRepository {
	return &AdminPostgreSQL{db: db}
}

func (a *AdminPostgreSQL) Create(ctx context.Context, admin *models.Admin) error {
	if err := a.db.WithContext(ctx).Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin: %w", translateError(err))
	}
	return nil
}

func (a *AdminPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Admin, error) {
	var admin models.Admin
	if err := a.db.WithContext(ctx).First(&admin, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &admin, nil
}

func (a *AdminPostgreSQL) GetByUserName(ctx context.Context, userName string) (*models.Admin, error) {
	var admin models.Admin
	if err := a.db.WithContext(ctx).Where("user_name = ?", userName).First(&admin).Error; err != nil {
		return nil, translateError(err)
	}
	return &admin, nil
}

func (a *AdminPostgreSQL) Update(ctx context.Context, admin *models.Admin) error {
	if err := a.db.WithContext(ctx).Save(admin).Error; err != nil {
		return fmt.Errorf("failed to update admin %d: %w", admin.ID, translateError(err))
	}
	return nil
}

func (a *AdminPostgreSQL) DeleteByUserName(ctx context.Context, userName string) (int64, error) {
	result := a.db.WithContext(ctx).Where("user_name = ?", userName).Delete(&models.Admin{})
	return result.RowsAffected, result.Error
}

// ExistsByUserName checks if the user name is taken by another admin
func (a *AdminPostgreSQL) ExistsByUserName(ctx context.Context, userName string, excludeID *uint) (bool, error) {
	query := a.db.WithContext(ctx).
		Model(&models.Admin{}).
		Where("user_name = ?", userName)

	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

// SetRefreshToken stores or clears (nil) the admin's current refresh token
func (a *AdminPostgreSQL) SetRefreshToken(ctx context.Context, id uint, token *string) error {
	result := a.db.WithContext(ctx).
		Model(&models.Admin{}).
		Where("id = ?", id).
		Update("refresh_token", token)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repositories.ErrRecordNotFound
	}
	return nil
}

func (a *AdminPostgreSQL) Count(ctx context.Context) (int64, error) {
	var count int64
	err := a.db.WithContext(ctx).Model(&models.Admin{}).Count(&count).Error
	return count, err
}
