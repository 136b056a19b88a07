package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"referral-rewards/internal/models"
)

var (
	// ErrUserNotFound is returned when no account exists for an id
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateReferral is returned when a referral reuses a recorded email or IP
	ErrDuplicateReferral = errors.New("referral already recorded for this email or IP")
	// ErrInvalidField is returned for lookups on a column that is not queryable
	ErrInvalidField = errors.New("invalid referral field")
	// ErrInvalidDelta is returned for non-positive point increments
	ErrInvalidDelta = errors.New("point increment must be positive")
)

// ReferralField names a referral column usable in equality lookups
type ReferralField string

const (
	FieldReferrerID   ReferralField = "referrer_id"
	FieldNewUserUID   ReferralField = "new_user_uid"
	FieldNewUserEmail ReferralField = "new_user_email"
	FieldNewUserIP    ReferralField = "new_user_ip"
)

func (f ReferralField) valid() bool {
	switch f {
	case FieldReferrerID, FieldNewUserUID, FieldNewUserEmail, FieldNewUserIP:
		return true
	}
	return false
}

// Store is the ledger collaborator consumed by the referral service.
// Methods called on the Store passed to a Transaction callback run in
// that transaction.
type Store interface {
	FindReferrals(ctx context.Context, field ReferralField, value string) ([]models.Referral, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	InsertReferral(ctx context.Context, referral *models.Referral) error
	UpsertMergeUser(ctx context.Context, user *models.User) error
	IncrementPoints(ctx context.Context, id string, delta int) (*models.User, error)
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn inside a database transaction.
// The transaction is rolled back when fn returns an error.
func (r *Repository) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

var _ Store = (*Repository)(nil)
