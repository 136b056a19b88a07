package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"referral-rewards/internal/models"
)

// GetUser retrieves an account by id
func (r *Repository) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return &user, nil
}

// UpsertMergeUser creates the account or merges into the existing one.
// Email and ReferredBy are only written when currently unset, points
// never decrease, and the milestone is left alone.
func (r *Repository) UpsertMergeUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"email":       gorm.Expr("CASE WHEN users.email IS NULL OR users.email = '' THEN excluded.email ELSE users.email END"),
				"referred_by": gorm.Expr("COALESCE(NULLIF(users.referred_by, ''), excluded.referred_by)"),
				"points":      gorm.Expr("CASE WHEN users.points < excluded.points THEN excluded.points ELSE users.points END"),
				"updated_at":  gorm.Expr("excluded.updated_at"),
			}),
		}).
		Create(user).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", user.ID, err)
	}

	return nil
}

// IncrementPoints atomically adds delta to the account's points, creating
// the account when absent. The milestone is assigned in the same statement
// from the post-increment total, so concurrent increments cannot race on it.
func (r *Repository) IncrementPoints(ctx context.Context, id string, delta int) (*models.User, error) {
	if delta <= 0 {
		return nil, ErrInvalidDelta
	}

	now := time.Now().UTC()
	user := models.User{
		ID:        id,
		Points:    delta,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if m, ok := models.MilestoneFor(delta); ok {
		label := m.Label
		user.Milestone = &label
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"points":     gorm.Expr("users.points + excluded.points"),
				"milestone":  gorm.Expr(milestoneCase("users.points + excluded.points", "users.milestone")),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).
		Create(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to increment points for %s: %w", id, err)
	}

	return r.GetUser(ctx, id)
}

// ListUsersByPoints returns accounts ordered by points descending.
// A non-positive limit returns all of them.
func (r *Repository) ListUsersByPoints(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	query := r.db.WithContext(ctx).Order("points DESC").Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// CountUsersAbove returns how many accounts hold more than points
func (r *Repository) CountUsersAbove(ctx context.Context, points int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("points > ?", points).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// milestoneCase builds a CASE expression assigning the label whose threshold
// equals total, unless current already holds that label or a higher one.
func milestoneCase(total, current string) string {
	var b strings.Builder
	b.WriteString("CASE")
	for i, m := range models.Milestones {
		held := make([]string, 0, len(models.Milestones)-i)
		for _, higher := range models.Milestones[i:] {
			held = append(held, quoteLiteral(higher.Label))
		}
		fmt.Fprintf(&b, " WHEN %s = %d AND COALESCE(%s, '') NOT IN (%s) THEN %s",
			total, m.Threshold, current, strings.Join(held, ", "), quoteLiteral(m.Label))
	}
	fmt.Fprintf(&b, " ELSE %s END", current)
	return b.String()
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
