package database

import (
	"log"
	"time"

	"github.com/riverlabs/rivergauge/internal/crypto"
	"github.com/riverlabs/rivergauge/internal/models"
	"gorm.io/gorm"
)

// SeedDevData populates the database with development test data.
// Idempotent: skips if data already exists.
func SeedDevData(db *gorm.DB) error {
	// Check if seed data already exists
	var existingUser models.User
	result := db.Where("email = ?", "dev@rivergauge.local").First(&existingUser)
	if result.Error == nil {
		log.Println("Seed data already exists, skipping")
		return nil
	}

	// Create local test user
	hash, err := crypto.HashPassword("devpass1")
	if err != nil {
		return err
	}
	user := models.User{
		Email:        "dev@rivergauge.local",
		FirstName:    "Dev",
		LastName:     "User",
		PasswordHash: &hash,
		Provider:     models.ProviderLocal,
	}

	if err := db.Create(&user).Error; err != nil {
		return err
	}

	// Create a second user linked to a Google identity
	googleID := "dev-google-id-12345"
	linked := models.User{
		Email:     "gauge@rivergauge.local",
		FirstName: "Gauge",
		LastName:  "Keeper",
		GoogleID:  &googleID,
		Provider:  models.ProviderGoogle,
	}

	if err := db.Create(&linked).Error; err != nil {
		return err
	}

	// Register sample machines for the dev user
	machines := []models.MachineProfile{
		{UserID: user.ID, MachineName: "Upstream Gauge", MachineCode: "RG-001", RiverName: "Willow Creek", Location: "Mill Bridge"},
		{UserID: user.ID, MachineName: "Downstream Gauge", MachineCode: "RG-002", RiverName: "Willow Creek", Location: "Harbor Weir"},
	}
	for i := range machines {
		if err := db.Create(&machines[i]).Error; err != nil {
			return err
		}
	}

	// A day of 15-minute readings for the first machine
	now := time.Now().Truncate(15 * time.Minute)
	for i := 0; i < 96; i++ {
		recordedAt := now.Add(-time.Duration(95-i) * 15 * time.Minute)
		reading := models.Reading{
			MachineCode: "RG-001",
			DepthCM:     120 + float64(i%12),
			RainfallMM:  float64(i%4) * 0.5,
			VelocityMS:  1.1 + float64(i%6)*0.05,
			RecordedAt:  recordedAt,
		}
		if err := db.Create(&reading).Error; err != nil {
			return err
		}
	}

	log.Println("Seeded dev data: 2 users, 2 machines, 96 readings")
	return nil
}
