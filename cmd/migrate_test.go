package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"staycation/models"
)

func TestMigrateAndSeedAreRepeatable(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	for i := 0; i < 2; i++ {
		require.NoError(t, Migrate(db))
		require.NoError(t, Seed(db))
	}

	var categories, amenities int64
	require.NoError(t, db.Model(&models.Category{}).Count(&categories).Error)
	require.NoError(t, db.Model(&models.Amenity{}).Count(&amenities).Error)
	assert.Equal(t, int64(len(defaultCategories)), categories)
	assert.Equal(t, int64(len(defaultAmenities)), amenities)
}
