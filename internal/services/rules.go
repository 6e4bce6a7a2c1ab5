package services

import (
	"github.com/petitionhub/petitiondb/internal/models"
	"github.com/petitionhub/petitiondb/internal/types"
	"gorm.io/gorm"
)

// Integrity rule predicates. Each one is a side-effect-free read of the
// current persisted state; the lifecycle services sequence them inside a
// transaction so a gate and its dependent mutation see the same rows.

// PetitionExists reports whether a petition row with the given id exists.
func PetitionExists(db *gorm.DB, petitionID int64) (bool, error) {
	var count int64
	if err := db.Model(&models.Petition{}).Where("id = ?", petitionID).Count(&count).Error; err != nil {
		return false, types.Storage(err)
	}
	return count > 0, nil
}

// TierExists reports whether a support tier exists within the given petition.
func TierExists(db *gorm.DB, tierID, petitionID int64) (bool, error) {
	var count int64
	if err := db.Model(&models.SupportTier{}).
		Where("id = ? AND petition_id = ?", tierID, petitionID).
		Count(&count).Error; err != nil {
		return false, types.Storage(err)
	}
	return count > 0, nil
}

// CategoryExists reports whether a category row with the given id exists.
func CategoryExists(db *gorm.DB, categoryID int64) (bool, error) {
	var count int64
	if err := db.Model(&models.Category{}).Where("id = ?", categoryID).Count(&count).Error; err != nil {
		return false, types.Storage(err)
	}
	return count > 0, nil
}

// CategoriesExist is all-or-nothing: true only if every id resolves.
func CategoriesExist(db *gorm.DB, categoryIDs []int64) (bool, error) {
	if len(categoryIDs) == 0 {
		return true, nil
	}
	distinct := make(map[int64]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		distinct[id] = struct{}{}
	}
	var count int64
	if err := db.Model(&models.Category{}).Where("id IN ?", categoryIDs).Count(&count).Error; err != nil {
		return false, types.Storage(err)
	}
	return count == int64(len(distinct)), nil
}

// UserExists reports whether a user row with the given id exists.
func UserExists(db *gorm.DB, userID int64) (bool, error) {
	var count int64
	if err := db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return false, types.Storage(err)
	}
	return count > 0, nil
}

// IsTitleUnique reports whether no petition anywhere carries the title.
func IsTitleUnique(db *gorm.DB, title string) (bool, error) {
	var count int64
	if err := db.Model(&models.Petition{}).Where("title = ?", title).Count(&count).Error; err != nil {
		return false, types.Storage(err)
	}
	return count == 0, nil
}

// IsTierTitleUniqueInPetition reports whether no sibling tier of the petition
// carries the title.
func IsTierTitleUniqueInPetition(db *gorm.DB, title string, petitionID int64) (bool, error) {
	var count int64
	if err := db.Model(&models.SupportTier{}).
		Where("title = ? AND petition_id = ?", title, petitionID).
		Count(&count).Error; err != nil {
		return false, types.Storage(err)
	}
	return count == 0, nil
}

// IsOwner reports whether userID owns the petition.
func IsOwner(db *gorm.DB, userID, petitionID int64) (bool, error) {
	var count int64
	if err := db.Model(&models.Petition{}).
		Where("id = ? AND owner_id = ?", petitionID, userID).
		Count(&count).Error; err != nil {
		return false, types.Storage(err)
	}
	return count > 0, nil
}

// TierCount returns the number of support tiers bound to the petition.
func TierCount(db *gorm.DB, petitionID int64) (int64, error) {
	var count int64
	if err := db.Model(&models.SupportTier{}).Where("petition_id = ?", petitionID).Count(&count).Error; err != nil {
		return 0, types.Storage(err)
	}
	return count, nil
}

// CanAddTier holds while the petition is below the 3-tier ceiling.
func CanAddTier(db *gorm.DB, petitionID int64) (bool, error) {
	count, err := TierCount(db, petitionID)
	if err != nil {
		return false, err
	}
	return count < maxSupportTiers, nil
}

// IsOnlyTier holds when the tier has no siblings within its petition.
func IsOnlyTier(db *gorm.DB, tierID, petitionID int64) (bool, error) {
	var count int64
	if err := db.Model(&models.SupportTier{}).
		Where("petition_id = ? AND id <> ?", petitionID, tierID).
		Count(&count).Error; err != nil {
		return false, types.Storage(err)
	}
	return count == 0, nil
}

// TierHasSupporters reports whether any pledge references the tier.
func TierHasSupporters(db *gorm.DB, tierID int64) (bool, error) {
	var count int64
	if err := db.Model(&models.Supporter{}).Where("support_tier_id = ?", tierID).Count(&count).Error; err != nil {
		return false, types.Storage(err)
	}
	return count > 0, nil
}

// PetitionHasSupporters reports whether any pledge references the petition.
func PetitionHasSupporters(db *gorm.DB, petitionID int64) (bool, error) {
	var count int64
	if err := db.Model(&models.Supporter{}).Where("petition_id = ?", petitionID).Count(&count).Error; err != nil {
		return false, types.Storage(err)
	}
	return count > 0, nil
}

// HasSupportedAtTier reports whether the user already pledged this
// (petition, tier) pair.
func HasSupportedAtTier(db *gorm.DB, userID, petitionID, tierID int64) (bool, error) {
	var count int64
	if err := db.Model(&models.Supporter{}).
		Where("user_id = ? AND petition_id = ? AND support_tier_id = ?", userID, petitionID, tierID).
		Count(&count).Error; err != nil {
		return false, types.Storage(err)
	}
	return count > 0, nil
}
