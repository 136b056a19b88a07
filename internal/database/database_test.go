package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"referral-rewards/internal/models"
)

func TestMigrate_CreatesLedgerTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), Config())
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	assert.True(t, db.Migrator().HasTable(&models.User{}))
	assert.True(t, db.Migrator().HasTable(&models.Referral{}))
	assert.True(t, db.Migrator().HasIndex(&models.Referral{}, "idx_referrals_new_user_email"))
	assert.True(t, db.Migrator().HasIndex(&models.Referral{}, "idx_referrals_new_user_ip"))
}

func TestMigrate_UniqueEmailIsEnforced(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), Config())
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	first := models.Referral{ID: "r1", ReferrerID: "a", NewUserUID: "b", NewUserEmail: "b@x.com", NewUserIP: "1.1.1.1"}
	require.NoError(t, db.Create(&first).Error)

	dup := models.Referral{ID: "r2", ReferrerID: "a", NewUserUID: "c", NewUserEmail: "b@x.com", NewUserIP: "2.2.2.2"}
	err = db.Create(&dup).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestAutoMigrate_NotConnected(t *testing.T) {
	DB = nil
	assert.Error(t, AutoMigrate())
}
