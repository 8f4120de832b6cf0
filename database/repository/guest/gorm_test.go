package guestRepo

import (
	"context"
	"testing"

	"remindly/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.GuestDevice{}))
	return db
}

func TestUpsertCreatesThenUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	repo := NewGormGuestDeviceRepo(testDB(t))

	first, err := repo.Upsert(ctx, "dev-1", "tok-old", "Africa/Nairobi")
	require.NoError(t, err)
	require.True(t, first.IsActive)

	second, err := repo.Upsert(ctx, "dev-1", "tok-new", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "re-registration updates the existing row")
	assert.Equal(t, "tok-new", second.FirebaseToken)
	assert.Equal(t, "Africa/Nairobi", second.Timezone, "empty fields keep their previous value")

	var count int64
	require.NoError(t, repo.db.Model(&models.GuestDevice{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpsertReactivatesDeactivatedDevice(t *testing.T) {
	ctx := context.Background()
	repo := NewGormGuestDeviceRepo(testDB(t))

	_, err := repo.Upsert(ctx, "dev-1", "tok-1", "UTC")
	require.NoError(t, err)
	require.NoError(t, repo.Deactivate(ctx, "dev-1"))

	row, err := repo.Upsert(ctx, "dev-1", "tok-2", "UTC")
	require.NoError(t, err)
	assert.True(t, row.IsActive)
}

func TestByDeviceIDUnknownReturnsNil(t *testing.T) {
	repo := NewGormGuestDeviceRepo(testDB(t))

	row, err := repo.ByDeviceID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestDeactivate(t *testing.T) {
	ctx := context.Background()
	repo := NewGormGuestDeviceRepo(testDB(t))

	_, err := repo.Upsert(ctx, "dev-1", "tok-1", "UTC")
	require.NoError(t, err)
	require.NoError(t, repo.Deactivate(ctx, "dev-1"))

	row, err := repo.ByDeviceID(ctx, "dev-1")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.False(t, row.IsActive)

	// Unknown device is a no-op success.
	assert.NoError(t, repo.Deactivate(ctx, "ghost"))
}
