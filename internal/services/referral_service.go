package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"referral-rewards/internal/logger"
	"referral-rewards/internal/models"
	"referral-rewards/internal/repository"
	"referral-rewards/internal/utils"
)

// AcceptResult describes the records written for an accepted referral
type AcceptResult struct {
	Referral models.Referral
	NewUser  models.User
	Referrer models.User
}

type ReferralService struct {
	store repository.Store
	log   *logger.Logger
	now   func() time.Time

	mu        sync.RWMutex
	listeners []func(*AcceptResult)
}

func NewReferralService(store repository.Store, log *logger.Logger) *ReferralService {
	return &ReferralService{
		store: store,
		log:   log.With("component", "referral"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// OnAccepted registers fn to be called after every accepted referral
func (s *ReferralService) OnAccepted(fn func(*AcceptResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// AcceptReferral validates a claim and, when it passes, records the referral
// and credits both users in a single transaction. Every failure is returned
// as a *ReferralError.
func (s *ReferralService) AcceptReferral(ctx context.Context, claim models.ReferralClaim) (*AcceptResult, error) {
	claim = normalizeClaim(claim)

	if err := validateClaim(claim); err != nil {
		s.log.Warn("referral rejected", "kind", err.Kind, "referrer_id", claim.ReferrerID, "new_user_uid", claim.NewUserUID)
		return nil, err
	}

	var result AcceptResult
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		referral := models.Referral{
			ReferrerID:   claim.ReferrerID,
			NewUserUID:   claim.NewUserUID,
			NewUserEmail: claim.NewUserEmail,
			NewUserIP:    claim.NewUserIP,
			CreatedAt:    s.now(),
		}
		if err := tx.InsertReferral(ctx, &referral); err != nil {
			return err
		}

		referredBy := claim.ReferrerID
		if err := tx.UpsertMergeUser(ctx, &models.User{
			ID:         claim.NewUserUID,
			Email:      claim.NewUserEmail,
			Points:     1,
			ReferredBy: &referredBy,
		}); err != nil {
			return err
		}

		newUser, err := tx.GetUser(ctx, claim.NewUserUID)
		if err != nil {
			return err
		}

		referrer, err := tx.IncrementPoints(ctx, claim.ReferrerID, 1)
		if err != nil {
			return err
		}

		result = AcceptResult{Referral: referral, NewUser: *newUser, Referrer: *referrer}
		return nil
	})

	if errors.Is(err, repository.ErrDuplicateReferral) {
		refErr := s.classifyConflict(ctx, claim, err)
		if refErr.IsClientError() {
			s.log.Warn("referral rejected", "kind", refErr.Kind, "referrer_id", claim.ReferrerID, "new_user_uid", claim.NewUserUID)
		}
		return nil, refErr
	}
	if err != nil {
		s.log.Error("referral storage failure", "referrer_id", claim.ReferrerID, "new_user_uid", claim.NewUserUID, "error", err)
		return nil, newReferralError(KindStorageFailure, err)
	}

	s.log.Info("referral accepted",
		"referral_id", result.Referral.ID,
		"referrer_id", result.Referrer.ID,
		"referrer_points", result.Referrer.Points,
		"milestone", result.Referrer.MilestoneLabel(),
	)
	s.notify(&result)

	return &result, nil
}

// classifyConflict decides which dedup rule rejected the insert.
// The email rule is checked first so reporting matches the validation order.
func (s *ReferralService) classifyConflict(ctx context.Context, claim models.ReferralClaim, cause error) *ReferralError {
	byEmail, err := s.store.FindReferrals(ctx, repository.FieldNewUserEmail, claim.NewUserEmail)
	if err != nil {
		s.log.Error("referral conflict lookup failed", "error", err)
		return newReferralError(KindStorageFailure, err)
	}
	if len(byEmail) > 0 {
		return newReferralError(KindDuplicateEmail, nil)
	}

	byIP, err := s.store.FindReferrals(ctx, repository.FieldNewUserIP, claim.NewUserIP)
	if err != nil {
		s.log.Error("referral conflict lookup failed", "error", err)
		return newReferralError(KindStorageFailure, err)
	}
	if len(byIP) > 0 {
		return newReferralError(KindDuplicateIP, nil)
	}

	s.log.Error("referral conflict not attributable to email or IP", "error", cause)
	return newReferralError(KindStorageFailure, fmt.Errorf("unattributed conflict: %w", cause))
}

func (s *ReferralService) notify(result *AcceptResult) {
	s.mu.RLock()
	listeners := append([]func(*AcceptResult){}, s.listeners...)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(result)
	}
}

func normalizeClaim(claim models.ReferralClaim) models.ReferralClaim {
	return models.ReferralClaim{
		ReferrerID:   strings.TrimSpace(claim.ReferrerID),
		NewUserUID:   strings.TrimSpace(claim.NewUserUID),
		NewUserEmail: utils.NormalizeEmail(claim.NewUserEmail),
		NewUserIP:    strings.TrimSpace(claim.NewUserIP),
	}
}

func validateClaim(claim models.ReferralClaim) *ReferralError {
	if claim.ReferrerID == "" || claim.NewUserUID == "" || claim.NewUserEmail == "" || claim.NewUserIP == "" {
		return newReferralError(KindMissingFields, nil)
	}

	// Cannot refer yourself
	if claim.ReferrerID == claim.NewUserUID {
		return newReferralError(KindSelfReferral, nil)
	}

	return nil
}
