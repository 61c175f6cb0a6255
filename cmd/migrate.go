package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"staycation/models"
)

var (
	defaultCategories = []string{"Villa", "Apartment", "Guest House", "Hotel", "Cabin"}
	defaultAmenities  = []models.Amenity{
		{Name: "WiFi", Icon: "wifi"},
		{Name: "Swimming Pool", Icon: "pool"},
		{Name: "Parking", Icon: "parking"},
		{Name: "Air Conditioning", Icon: "ac"},
		{Name: "Kitchen", Icon: "kitchen"},
		{Name: "Breakfast", Icon: "breakfast"},
	}
)

func migrateCmd() *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(false)
			if err != nil {
				return err
			}
			defer rt.close()

			if err := Migrate(rt.db); err != nil {
				return err
			}
			rt.log.Info("schema migrated", zap.Int("tables", len(models.All())))
			if !seed {
				return nil
			}
			if err := Seed(rt.db); err != nil {
				return err
			}
			rt.log.Info("catalog seeded")
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", true, "insert default categories and amenities")
	return cmd
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Seed inserts the default catalog; existing names are left alone.
func Seed(db *gorm.DB) error {
	categories := make([]models.Category, len(defaultCategories))
	for i, name := range defaultCategories {
		categories[i] = models.Category{Name: name}
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&categories).Error; err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	amenities := append([]models.Amenity(nil), defaultAmenities...)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&amenities).Error; err != nil {
		return fmt.Errorf("seed amenities: %w", err)
	}
	return nil
}
