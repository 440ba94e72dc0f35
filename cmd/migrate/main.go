package main

import (
	"flag"
	"os"

	"podcast-be/internal/config"
	"podcast-be/internal/model"
	"podcast-be/pkg/database"

	"github.com/fatih/color"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	seed := flag.Bool("seed", true, "insert the default plan catalog")
	flag.Parse()

	cfg := config.Load()

	db, err := database.Open(database.Options{
		Dialect: cfg.Database.Dialect,
		DSN:     cfg.Database.Connection,
	})
	if err != nil {
		color.Red("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Running AutoMigrate...")
	if err := db.AutoMigrate(model.All()...); err != nil {
		color.Red("Migration failed: %v", err)
		os.Exit(1)
	}
	color.Green("Schema is up to date")

	if !*seed {
		return
	}
	color.Cyan("Seeding plans...")
	if err := seedPlans(db, cfg); err != nil {
		color.Red("Seeding failed: %v", err)
		os.Exit(1)
	}
	color.Green("Plans seeded")
}

// seedPlans inserts the default catalog. Plans that already exist by name
// are left untouched.
func seedPlans(db *gorm.DB, cfg *config.Config) error {
	podcasts := func(n int) *int { return &n }
	plans := []model.Plan{
		{
			Name:           cfg.Billing.FreePlanName,
			Description:    "Listen to public sessions and try the platform",
			Price:          0,
			Currency:       cfg.Billing.DefaultCurrency,
			DurationDays:   cfg.Billing.FreeTrialDays,
			Features:       datatypes.JSONSlice[string]{"public_sessions"},
			StorageQuotaMB: 100,
			MaxPodcasts:    podcasts(1),
			IsActive:       true,
		},
		{
			Name:           "Basic",
			Description:    "Host your own podcast with recordings",
			Price:          999,
			Currency:       cfg.Billing.DefaultCurrency,
			DurationDays:   30,
			Features:       datatypes.JSONSlice[string]{"public_sessions", "host_sessions", "recordings"},
			StorageQuotaMB: 1024,
			MaxPodcasts:    podcasts(5),
			IsActive:       true,
		},
		{
			Name:           "Premium",
			Description:    "Unlimited podcasts, private sessions and monetization",
			Price:          2499,
			Currency:       cfg.Billing.DefaultCurrency,
			DurationDays:   30,
			Features:       datatypes.JSONSlice[string]{"public_sessions", "host_sessions", "recordings", "private_sessions", "monetization"},
			StorageQuotaMB: 10240,
			IsActive:       true,
		},
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&plans).Error
}
