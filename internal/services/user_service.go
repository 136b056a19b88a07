package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"referral-rewards/internal/models"
	"referral-rewards/internal/repository"
	"referral-rewards/internal/utils"
)

// UserStore is the account read/write path used by UserService
type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpsertMergeUser(ctx context.Context, user *models.User) error
	ListReferralsByReferrer(ctx context.Context, referrerID string, limit int) ([]models.Referral, error)
	CountReferralsByReferrer(ctx context.Context, referrerID string) (int64, error)
	CountUsersAbove(ctx context.Context, points int) (int64, error)
}

// UserSettings holds the presentation settings of UserService
type UserSettings struct {
	BaseURL        string
	RewardPerPoint decimal.Decimal
	QRSize         int
	TopLimit       int
	RecentLimit    int
}

// ReferralSummary is a referral as shown to the referrer
type ReferralSummary struct {
	ID           string    `json:"id"`
	NewUserEmail string    `json:"new_user_email"`
	CreatedAt    time.Time `json:"created_at"`
}

// MilestoneProgress describes the next milestone a user can reach
type MilestoneProgress struct {
	Label     string `json:"label"`
	Threshold int    `json:"threshold"`
	Remaining int    `json:"remaining"`
}

// Dashboard aggregates what a user sees after signing in
type Dashboard struct {
	UserID          string             `json:"user_id"`
	Email           string             `json:"email"`
	Points          int                `json:"points"`
	Milestone       string             `json:"milestone,omitempty"`
	NextMilestone   *MilestoneProgress `json:"next_milestone,omitempty"`
	Position        int64              `json:"position"`
	RewardsEarned   decimal.Decimal    `json:"rewards_earned"`
	ReferralCount   int64              `json:"referral_count"`
	ReferralLink    string             `json:"referral_link"`
	RecentReferrals []ReferralSummary  `json:"recent_referrals"`
	TopLeaders      []LeaderboardEntry `json:"top_leaders"`
}

// UserService handles account bootstrap and the dashboard read path
type UserService struct {
	store       UserStore
	leaderboard *LeaderboardService
	settings    UserSettings
}

// NewUserService creates a new UserService
func NewUserService(store UserStore, leaderboard *LeaderboardService, settings UserSettings) *UserService {
	return &UserService{
		store:       store,
		leaderboard: leaderboard,
		settings:    settings,
	}
}

// EnsureAccount creates the account on first authentication.
// An existing account only gets its email filled in when missing.
func (s *UserService) EnsureAccount(ctx context.Context, userID, email string) (*models.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	if err := s.store.UpsertMergeUser(ctx, &models.User{
		ID:    userID,
		Email: utils.NormalizeEmail(email),
	}); err != nil {
		return nil, err
	}

	if s.leaderboard != nil {
		s.leaderboard.Invalidate()
	}

	return s.store.GetUser(ctx, userID)
}

// GetUserByID retrieves an account by id
func (s *UserService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.store.GetUser(ctx, userID)
}

// ReferralLink returns the signup link crediting userID
func (s *UserService) ReferralLink(userID string) (string, error) {
	return utils.GenerateReferralLink(s.settings.BaseURL, userID)
}

// ReferralQRCode returns the referral link of userID as a PNG QR code
func (s *UserService) ReferralQRCode(userID string) ([]byte, error) {
	link, err := s.ReferralLink(userID)
	if err != nil {
		return nil, err
	}
	return utils.GenerateQRCode(link, s.settings.QRSize)
}

// GetUserReferrals returns referrals credited to userID, newest first
func (s *UserService) GetUserReferrals(ctx context.Context, userID string, limit int) ([]ReferralSummary, error) {
	referrals, err := s.store.ListReferralsByReferrer(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]ReferralSummary, len(referrals))
	for i, r := range referrals {
		summaries[i] = ReferralSummary{
			ID:           r.ID,
			NewUserEmail: utils.MaskEmail(r.NewUserEmail),
			CreatedAt:    r.CreatedAt,
		}
	}
	return summaries, nil
}

// RewardsFor converts points into their monetary value
func (s *UserService) RewardsFor(points int) decimal.Decimal {
	return s.settings.RewardPerPoint.Mul(decimal.NewFromInt(int64(points)))
}

// Dashboard builds the dashboard for userID. A user without an account yet
// sees an empty dashboard rather than an error.
func (s *UserService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		user = &models.User{ID: userID}
	} else if err != nil {
		return nil, err
	}

	link, err := s.ReferralLink(userID)
	if err != nil {
		return nil, err
	}

	above, err := s.store.CountUsersAbove(ctx, user.Points)
	if err != nil {
		return nil, err
	}

	count, err := s.store.CountReferralsByReferrer(ctx, userID)
	if err != nil {
		return nil, err
	}

	recent, err := s.GetUserReferrals(ctx, userID, s.settings.RecentLimit)
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{
		UserID:          user.ID,
		Email:           user.Email,
		Points:          user.Points,
		Milestone:       user.MilestoneLabel(),
		Position:        above + 1,
		RewardsEarned:   s.RewardsFor(user.Points),
		ReferralCount:   count,
		ReferralLink:    link,
		RecentReferrals: recent,
		TopLeaders:      []LeaderboardEntry{},
	}

	if next, ok := models.NextMilestone(user.Points); ok {
		dashboard.NextMilestone = &MilestoneProgress{
			Label:     next.Label,
			Threshold: next.Threshold,
			Remaining: next.Threshold - user.Points,
		}
	}

	if s.leaderboard != nil {
		top, err := s.leaderboard.Top(ctx, s.settings.TopLimit)
		if err != nil {
			return nil, err
		}
		dashboard.TopLeaders = top
	}

	return dashboard, nil
}
