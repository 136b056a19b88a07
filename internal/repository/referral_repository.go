package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"referral-rewards/internal/models"
)

// FindReferrals returns referrals whose field equals value, oldest first
func (r *Repository) FindReferrals(ctx context.Context, field ReferralField, value string) ([]models.Referral, error) {
	if !field.valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidField, field)
	}

	var referrals []models.Referral
	err := r.db.WithContext(ctx).
		Where(fmt.Sprintf("%s = ?", field), value).
		Order("created_at ASC").
		Find(&referrals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find referrals by %s: %w", field, err)
	}

	return referrals, nil
}

// InsertReferral records a referral, assigning an id and timestamp when unset.
// A referral reusing a recorded email or IP fails with ErrDuplicateReferral.
func (r *Repository) InsertReferral(ctx context.Context, referral *models.Referral) error {
	if referral.ID == "" {
		referral.ID = uuid.NewString()
	}
	if referral.CreatedAt.IsZero() {
		referral.CreatedAt = time.Now().UTC()
	}

	err := r.db.WithContext(ctx).Create(referral).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicateReferral, err)
	}
	if err != nil {
		return fmt.Errorf("failed to insert referral: %w", err)
	}

	return nil
}

// ListReferralsByReferrer returns referrals credited to referrerID, newest first.
// A non-positive limit returns all of them.
func (r *Repository) ListReferralsByReferrer(ctx context.Context, referrerID string, limit int) ([]models.Referral, error) {
	var referrals []models.Referral
	query := r.db.WithContext(ctx).
		Where("referrer_id = ?", referrerID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&referrals).Error; err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}

	return referrals, nil
}

// CountReferralsByReferrer returns how many referrals credit referrerID
func (r *Repository) CountReferralsByReferrer(ctx context.Context, referrerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Referral{}).
		Where("referrer_id = ?", referrerID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count referrals: %w", err)
	}
	return count, nil
}
