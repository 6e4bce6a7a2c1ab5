package helpers

import (
	"testing"

	"github.com/petitionhub/petitiondb/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CreateTestUser inserts a user with a bcrypt-hashed password and returns it.
func CreateTestUser(t *testing.T, db *gorm.DB, email, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := models.User{
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		Password:  string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return &user
}

// CreateTestCategory inserts a category and returns it.
func CreateTestCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := models.Category{Name: name}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	return &category
}

// CreateTestPetition inserts a petition with a single tier at the given cost.
func CreateTestPetition(t *testing.T, db *gorm.DB, title string, ownerID, categoryID int64, cost float64) *models.Petition {
	t.Helper()
	petition := models.Petition{
		Title:       title,
		Description: "A test petition",
		OwnerID:     ownerID,
		CategoryID:  categoryID,
	}
	if err := db.Create(&petition).Error; err != nil {
		t.Fatalf("Failed to create petition: %v", err)
	}
	tier := models.SupportTier{
		PetitionID:  petition.ID,
		Title:       "Base",
		Description: "Base tier",
		Cost:        cost,
	}
	if err := db.Create(&tier).Error; err != nil {
		t.Fatalf("Failed to create support tier: %v", err)
	}
	petition.SupportTiers = []models.SupportTier{tier}
	return &petition
}

// AddTestTier appends a tier to an existing petition.
func AddTestTier(t *testing.T, db *gorm.DB, petitionID int64, title string, cost float64) *models.SupportTier {
	t.Helper()
	tier := models.SupportTier{
		PetitionID:  petitionID,
		Title:       title,
		Description: title + " tier",
		Cost:        cost,
	}
	if err := db.Create(&tier).Error; err != nil {
		t.Fatalf("Failed to create support tier: %v", err)
	}
	return &tier
}

// AddTestSupporter records a pledge.
func AddTestSupporter(t *testing.T, db *gorm.DB, petitionID, tierID, userID int64, message *string) *models.Supporter {
	t.Helper()
	supporter := models.Supporter{
		PetitionID:    petitionID,
		SupportTierID: tierID,
		UserID:        userID,
		Message:       message,
	}
	if err := db.Create(&supporter).Error; err != nil {
		t.Fatalf("Failed to create supporter: %v", err)
	}
	return &supporter
}
