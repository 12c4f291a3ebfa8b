package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/cardswap/internal/db"
	"github.com/oggyb/cardswap/internal/domain"
)

// UserRepository stores accounts and their 1:1 profiles.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// Create inserts the user and its profile together. Duplicate usernames or
// emails surface as gorm.ErrDuplicatedKey.
func (r *UserRepository) Create(ctx context.Context, u domain.User, p domain.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		um := db.User{
			ID:           u.ID,
			Username:     u.Username,
			Email:        u.Email,
			PasswordHash: u.PasswordHash,
			Active:       u.Active,
		}
		if err := tx.Create(&um).Error; err != nil {
			return err
		}
		pm := profileToModel(p)
		pm.UserID = u.ID
		return tx.Omit("User").Create(&pm).Error
	})
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	var m db.User
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return domain.User{}, notFound(err, "user")
	}
	return userFromModel(m), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	var m db.User
	if err := r.db.WithContext(ctx).First(&m, "email = ?", email).Error; err != nil {
		return domain.User{}, notFound(err, "user")
	}
	return userFromModel(m), nil
}

func (r *UserRepository) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	var m db.Profile
	if err := r.db.WithContext(ctx).First(&m, "user_id = ?", userID).Error; err != nil {
		return domain.Profile{}, notFound(err, "profile")
	}
	return profileFromModel(m), nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, p domain.Profile) error {
	return r.db.WithContext(ctx).
		Model(&db.Profile{UserID: p.UserID}).
		Updates(map[string]any{
			"display_name": p.DisplayName,
			"bio":          p.Bio,
			"city_code":    p.CityCode,
			"avatar_key":   p.AvatarKey,
		}).Error
}

// ListProfilesInCity returns profiles of active users in cityCode, skipping
// excludeUserID, most recently updated first.
func (r *UserRepository) ListProfilesInCity(ctx context.Context, cityCode, excludeUserID string, limit int) ([]domain.Profile, error) {
	var rows []db.Profile
	err := r.db.WithContext(ctx).
		Joins("JOIN users u ON u.id = profiles.user_id AND u.active = ?", true).
		Where("profiles.city_code = ? AND profiles.user_id <> ?", cityCode, excludeUserID).
		Order("profiles.updated_at DESC, profiles.user_id").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Profile, 0, len(rows))
	for _, m := range rows {
		out = append(out, profileFromModel(m))
	}
	return out, nil
}

func userFromModel(m db.User) domain.User {
	return domain.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Active:       m.Active,
		CreatedAt:    m.CreatedAt,
	}
}

func profileToModel(p domain.Profile) db.Profile {
	return db.Profile{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Bio:         p.Bio,
		CityCode:    p.CityCode,
		AvatarKey:   p.AvatarKey,
	}
}

func profileFromModel(m db.Profile) domain.Profile {
	return domain.Profile{
		UserID:      m.UserID,
		DisplayName: m.DisplayName,
		Bio:         m.Bio,
		CityCode:    m.CityCode,
		AvatarKey:   m.AvatarKey,
		UpdatedAt:   m.UpdatedAt,
	}
}
