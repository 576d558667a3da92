package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/vtzdude/Music-library/internal/models"
)

func (r *GormRepo) CountSessionsByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Session{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindOldestSessionByUser returns the oldest surviving session for the user.
// Creation time ties break on id, nothing beyond insertion order is promised.
func (r *GormRepo) FindOldestSessionByUser(ctx context.Context, userID uuid.UUID) (*models.Session, error) {
	var session models.Session
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at, id").
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *GormRepo) FindSessionByUserAndToken(ctx context.Context, userID uuid.UUID, token string) (*models.Session, error) {
	var session models.Session
	if err := r.DB.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID, token).
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *GormRepo) CreateSession(ctx context.Context, session *models.Session) error {
	return r.DB.WithContext(ctx).Create(session).Error
}

func (r *GormRepo) DeleteSessionByID(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{})
	return result.RowsAffected, result.Error
}

func (r *GormRepo) DeleteSessionByUserAndToken(ctx context.Context, userID uuid.UUID, token string) (int64, error) {
	result := r.DB.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID, token).
		Delete(&models.Session{})
	return result.RowsAffected, result.Error
}

func (r *GormRepo) DeleteSessionsByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Session{})
	return result.RowsAffected, result.Error
}
