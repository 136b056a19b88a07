package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"referral-rewards/internal/models"
	"referral-rewards/internal/testutil"
)

func strPtr(s string) *string { return &s }

func TestInsertReferral_AssignsIDAndTimestamp(t *testing.T) {
	repo := NewRepository(testutil.NewTestDB(t))
	ctx := context.Background()

	ref := &models.Referral{ReferrerID: "u1", NewUserUID: "u2", NewUserEmail: "a@x.com", NewUserIP: "10.0.0.1"}
	require.NoError(t, repo.InsertReferral(ctx, ref))

	assert.Len(t, ref.ID, 36)
	assert.False(t, ref.CreatedAt.IsZero())
}

func TestInsertReferral_Duplicates(t *testing.T) {
	repo := NewRepository(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.InsertReferral(ctx, &models.Referral{
		ReferrerID: "u1", NewUserUID: "u2", NewUserEmail: "a@x.com", NewUserIP: "10.0.0.1",
	}))

	err := repo.InsertReferral(ctx, &models.Referral{
		ReferrerID: "u1", NewUserUID: "u3", NewUserEmail: "a@x.com", NewUserIP: "10.0.0.2",
	})
	assert.ErrorIs(t, err, ErrDuplicateReferral)

	err = repo.InsertReferral(ctx, &models.Referral{
		ReferrerID: "u1", NewUserUID: "u4", NewUserEmail: "b@x.com", NewUserIP: "10.0.0.1",
	})
	assert.ErrorIs(t, err, ErrDuplicateReferral)
}

func TestFindReferrals(t *testing.T) {
	repo := NewRepository(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.InsertReferral(ctx, &models.Referral{
		ReferrerID: "u1", NewUserUID: "u2", NewUserEmail: "a@x.com", NewUserIP: "10.0.0.1",
	}))

	found, err := repo.FindReferrals(ctx, FieldNewUserEmail, "a@x.com")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = repo.FindReferrals(ctx, FieldNewUserIP, "10.0.0.9")
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = repo.FindReferrals(ctx, ReferralField("points; DROP TABLE users"), "x")
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestGetUser_NotFound(t *testing.T) {
	repo := NewRepository(testutil.NewTestDB(t))

	_, err := repo.GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpsertMergeUser_CreatesThenMerges(t *testing.T) {
	repo := NewRepository(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.UpsertMergeUser(ctx, &models.User{
		ID: "u2", Email: "first@x.com", Points: 1, ReferredBy: strPtr("u1"),
	}))

	user, err := repo.GetUser(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, "first@x.com", user.Email)
	assert.Equal(t, 1, user.Points)
	require.NotNil(t, user.ReferredBy)
	assert.Equal(t, "u1", *user.ReferredBy)

	require.NoError(t, repo.UpsertMergeUser(ctx, &models.User{
		ID: "u2", Email: "second@x.com", Points: 1, ReferredBy: strPtr("u9"),
	}))

	user, err = repo.GetUser(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, "first@x.com", user.Email)
	assert.Equal(t, "u1", *user.ReferredBy)
}

func TestUpsertMergeUser_NeverLowersPoints(t *testing.T) {
	repo := NewRepository(testutil.NewTestDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.IncrementPoints(ctx, "u2", 1)
		require.NoError(t, err)
	}

	require.NoError(t, repo.UpsertMergeUser(ctx, &models.User{ID: "u2", Email: "b@x.com", Points: 1}))

	user, err := repo.GetUser(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 3, user.Points)
	assert.Equal(t, "b@x.com", user.Email)
	assert.Nil(t, user.ReferredBy)
}

func TestUpsertMergeUser_RaisesZeroPoints(t *testing.T) {
	repo := NewRepository(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.UpsertMergeUser(ctx, &models.User{ID: "u2", Email: "b@x.com"}))
	require.NoError(t, repo.UpsertMergeUser(ctx, &models.User{ID: "u2", Points: 1, ReferredBy: strPtr("u1")}))

	user, err := repo.GetUser(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, user.Points)
	assert.Equal(t, "u1", *user.ReferredBy)
}

func TestIncrementPoints_CreatesAbsentAccount(t *testing.T) {
	repo := NewRepository(testutil.NewTestDB(t))

	user, err := repo.IncrementPoints(context.Background(), "ref", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, user.Points)
	assert.Nil(t, user.Milestone)
}

func TestIncrementPoints_AssignsMilestonesOnExactThreshold(t *testing.T) {
	repo := NewRepository(testutil.NewTestDB(t))
	ctx := context.Background()

	want := map[int]string{5: "Bronze", 6: "Bronze", 9: "Bronze", 10: "Silver", 19: "Silver", 20: "Gold", 21: "Gold"}

	for points := 1; points <= 21; points++ {
		user, err := repo.IncrementPoints(ctx, "ref", 1)
		require.NoError(t, err)
		require.Equal(t, points, user.Points)

		if label, ok := want[points]; ok {
			assert.Equal(t, label, user.MilestoneLabel(), "points=%d", points)
		}
		if points < 5 {
			assert.Nil(t, user.Milestone, "points=%d", points)
		}
	}
}

func TestIncrementPoints_NeverDowngrades(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.User{ID: "ref", Points: 4, Milestone: strPtr("Silver")}).Error)

	user, err := repo.IncrementPoints(ctx, "ref", 1)
	require.NoError(t, err)
	assert.Equal(t, 5, user.Points)
	assert.Equal(t, "Silver", user.MilestoneLabel())
}

func TestIncrementPoints_InvalidDelta(t *testing.T) {
	repo := NewRepository(testutil.NewTestDB(t))

	_, err := repo.IncrementPoints(context.Background(), "ref", 0)
	assert.ErrorIs(t, err, ErrInvalidDelta)
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	repo := NewRepository(testutil.NewTestDB(t))
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.Transaction(ctx, func(tx Store) error {
		if err := tx.InsertReferral(ctx, &models.Referral{
			ReferrerID: "u1", NewUserUID: "u2", NewUserEmail: "a@x.com", NewUserIP: "10.0.0.1",
		}); err != nil {
			return err
		}
		if _, err := tx.IncrementPoints(ctx, "u1", 1); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	found, err := repo.FindReferrals(ctx, FieldNewUserEmail, "a@x.com")
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = repo.GetUser(ctx, "u1")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListUsersByPointsAndCounts(t *testing.T) {
	repo := NewRepository(testutil.NewTestDB(t))
	ctx := context.Background()

	for id, n := range map[string]int{"a": 3, "b": 7, "c": 1} {
		for i := 0; i < n; i++ {
			_, err := repo.IncrementPoints(ctx, id, 1)
			require.NoError(t, err)
		}
	}

	users, err := repo.ListUsersByPoints(ctx, 0)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "b", users[0].ID)
	assert.Equal(t, "a", users[1].ID)
	assert.Equal(t, "c", users[2].ID)

	top, err := repo.ListUsersByPoints(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)

	above, err := repo.CountUsersAbove(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), above)
}

func TestListReferralsByReferrer(t *testing.T) {
	repo := NewRepository(testutil.NewTestDB(t))
	ctx := context.Background()

	for i, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		require.NoError(t, repo.InsertReferral(ctx, &models.Referral{
			ReferrerID: "u1", NewUserUID: email, NewUserEmail: email, NewUserIP: string(rune('a' + i)),
		}))
	}

	refs, err := repo.ListReferralsByReferrer(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Len(t, refs, 2)

	count, err := repo.CountReferralsByReferrer(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestMilestoneCase(t *testing.T) {
	expr := milestoneCase("total", "current")

	assert.Contains(t, expr, "WHEN total = 5 AND COALESCE(current, '') NOT IN ('Bronze', 'Silver', 'Gold') THEN 'Bronze'")
	assert.Contains(t, expr, "WHEN total = 20 AND COALESCE(current, '') NOT IN ('Gold') THEN 'Gold'")
	assert.Contains(t, expr, "ELSE current END")
}
