package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"referral-rewards/internal/models"
	"referral-rewards/internal/repository"
	"referral-rewards/internal/testutil"
)

func setupUserService(t *testing.T) (*UserService, *ReferralService) {
	db := testutil.NewTestDB(t)
	repo := repository.NewRepository(db)
	log := testutil.MakeNoopLogger()

	leaderboard := NewLeaderboardService(repo, log, time.Hour)
	referrals := NewReferralService(repo, log)
	referrals.OnAccepted(func(*AcceptResult) { leaderboard.Invalidate() })

	users := NewUserService(repo, leaderboard, UserSettings{
		BaseURL:        "https://rewards.example.com",
		RewardPerPoint: decimal.RequireFromString("0.5"),
		QRSize:         128,
		TopLimit:       2,
		RecentLimit:    2,
	})
	return users, referrals
}

func TestEnsureAccount_CreatesWithZeroPoints(t *testing.T) {
	users, _ := setupUserService(t)

	user, err := users.EnsureAccount(context.Background(), "u1", " Alice@X.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "alice@x.com", user.Email)
	assert.Equal(t, 0, user.Points)
	assert.Nil(t, user.ReferredBy)
}

func TestEnsureAccount_KeepsPointsAndReferrer(t *testing.T) {
	users, referrals := setupUserService(t)
	ctx := context.Background()

	_, err := referrals.AcceptReferral(ctx, claim("ref", "u1", "u1@x.com", "10.0.0.1"))
	require.NoError(t, err)

	user, err := users.EnsureAccount(ctx, "u1", "changed@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, user.Points)
	assert.Equal(t, "u1@x.com", user.Email)
	assert.Equal(t, "ref", *user.ReferredBy)

	ref, err := users.EnsureAccount(ctx, "ref", "ref@x.com")
	require.NoError(t, err)
	assert.Equal(t, "ref@x.com", ref.Email)
	assert.Equal(t, 1, ref.Points)
}

func TestEnsureAccount_RequiresID(t *testing.T) {
	users, _ := setupUserService(t)

	_, err := users.EnsureAccount(context.Background(), " ", "a@x.com")
	assert.Error(t, err)
}

func TestGetUserByID_NotFound(t *testing.T) {
	users, _ := setupUserService(t)

	_, err := users.GetUserByID(context.Background(), "nobody")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestReferralLinkAndQRCode(t *testing.T) {
	users, _ := setupUserService(t)

	link, err := users.ReferralLink("u1")
	require.NoError(t, err)
	assert.Equal(t, "https://rewards.example.com/join?ref=u1", link)

	png, err := users.ReferralQRCode("u1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestDashboard(t *testing.T) {
	users, referrals := setupUserService(t)
	ctx := context.Background()

	_, err := users.EnsureAccount(ctx, "ref", "ref@x.com")
	require.NoError(t, err)
	for i, id := range []string{"n1", "n2", "n3"} {
		_, err := referrals.AcceptReferral(ctx, claim("ref", id, id+"@x.com", "10.0.0."+string(rune('1'+i))))
		require.NoError(t, err)
	}

	d, err := users.Dashboard(ctx, "ref")
	require.NoError(t, err)

	assert.Equal(t, 3, d.Points)
	assert.Equal(t, "", d.Milestone)
	require.NotNil(t, d.NextMilestone)
	assert.Equal(t, "Bronze", d.NextMilestone.Label)
	assert.Equal(t, 2, d.NextMilestone.Remaining)
	assert.Equal(t, int64(1), d.Position)
	assert.True(t, decimal.RequireFromString("1.5").Equal(d.RewardsEarned))
	assert.Equal(t, int64(3), d.ReferralCount)
	assert.Equal(t, "https://rewards.example.com/join?ref=ref", d.ReferralLink)
	assert.Len(t, d.RecentReferrals, 2)
	assert.Contains(t, d.RecentReferrals[0].NewUserEmail, "***")
	require.Len(t, d.TopLeaders, 2)
	assert.Equal(t, "ref", d.TopLeaders[0].UserID)
}

func TestDashboard_UnknownUserIsEmpty(t *testing.T) {
	users, _ := setupUserService(t)

	d, err := users.Dashboard(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, 0, d.Points)
	assert.True(t, d.RewardsEarned.IsZero())
	assert.Empty(t, d.RecentReferrals)
	assert.Equal(t, "Bronze", d.NextMilestone.Label)
	assert.Equal(t, 5, d.NextMilestone.Remaining)
}

func TestDashboard_NoNextMilestoneAfterGold(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewRepository(db)
	gold := "Gold"
	require.NoError(t, db.Create(&models.User{ID: "top", Points: 25, Milestone: &gold}).Error)

	users := NewUserService(repo, nil, UserSettings{BaseURL: "https://r.example.com", RewardPerPoint: decimal.NewFromInt(1)})

	d, err := users.Dashboard(context.Background(), "top")
	require.NoError(t, err)
	assert.Nil(t, d.NextMilestone)
	assert.Equal(t, "Gold", d.Milestone)
	assert.Empty(t, d.TopLeaders)
	assert.True(t, decimal.NewFromInt(25).Equal(d.RewardsEarned))
}
