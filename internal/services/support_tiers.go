package services

import (
	"errors"

	"github.com/petitionhub/petitiondb/internal/models"
	"github.com/petitionhub/petitiondb/internal/types"
	"gorm.io/gorm"
)

// UpdateSupportTierInput carries the patch fields; nil means "keep prior value".
type UpdateSupportTierInput struct {
	Title       *string
	Description *string
	Cost        *float64
}

// AddSupportTier appends a tier to a petition. Gate order: petition
// existence, ownership, tier-count ceiling, tier-title uniqueness within
// the petition. The petition row is locked so two concurrent additions
// cannot both observe two tiers and push the count to four.
func AddSupportTier(db *gorm.DB, userID, petitionID int64, input SupportTierInput) (int64, error) {
	if err := input.validate(); err != nil {
		return 0, err
	}

	var tierID int64
	err := db.Transaction(func(tx *gorm.DB) error {
		var petition models.Petition
		err := lockForUpdate(tx).First(&petition, petitionID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NotFound("petition %d not found", petitionID)
			}
			return types.Storage(err)
		}
		if petition.OwnerID != userID {
			return types.Authorization("only the owner of a petition may add a support tier")
		}

		room, err := CanAddTier(tx, petitionID)
		if err != nil {
			return err
		}
		if !room {
			return types.Conflict("a petition may have at most %d support tiers", maxSupportTiers)
		}

		unique, err := IsTierTitleUniqueInPetition(tx, input.Title, petitionID)
		if err != nil {
			return err
		}
		if !unique {
			return types.Conflict("support tier title not unique within the petition")
		}

		tier := models.SupportTier{
			PetitionID:  petitionID,
			Title:       input.Title,
			Description: input.Description,
			Cost:        float64(input.Cost),
		}
		if err := tx.Create(&tier).Error; err != nil {
			return translateWriteError(err, "support tier title not unique within the petition")
		}
		tierID = tier.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return tierID, nil
}

// UpdateSupportTier patches the supplied fields of a tier. A tier that
// already has supporters is frozen; its terms cannot change under a pledge.
func UpdateSupportTier(db *gorm.DB, userID, petitionID, tierID int64, input UpdateSupportTierInput) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var petition models.Petition
		err := lockForUpdate(tx).First(&petition, petitionID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NotFound("petition %d not found", petitionID)
			}
			return types.Storage(err)
		}

		var tier models.SupportTier
		err = tx.Where("id = ? AND petition_id = ?", tierID, petitionID).First(&tier).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NotFound("support tier %d not found on petition %d", tierID, petitionID)
			}
			return types.Storage(err)
		}

		if petition.OwnerID != userID {
			return types.Authorization("only the owner of a petition may change a support tier")
		}

		pledged, err := TierHasSupporters(tx, tierID)
		if err != nil {
			return err
		}
		if pledged {
			return types.Conflict("cannot change a support tier with one or more supporters")
		}

		updates := map[string]any{}
		if input.Title != nil && *input.Title != tier.Title {
			unique, err := IsTierTitleUniqueInPetition(tx, *input.Title, petitionID)
			if err != nil {
				return err
			}
			if !unique {
				return types.Conflict("support tier title not unique within the petition")
			}
			updates["title"] = *input.Title
		}
		if input.Description != nil {
			updates["description"] = *input.Description
		}
		if input.Cost != nil {
			updates["cost"] = *input.Cost
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&tier).Updates(updates).Error; err != nil {
			return translateWriteError(err, "support tier title not unique within the petition")
		}
		return nil
	})
}

// DeleteSupportTier removes a tier. A pledged tier cannot go away, and the
// last tier of a petition cannot go away.
func DeleteSupportTier(db *gorm.DB, userID, petitionID, tierID int64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var petition models.Petition
		err := lockForUpdate(tx).First(&petition, petitionID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NotFound("petition %d not found", petitionID)
			}
			return types.Storage(err)
		}

		if petition.OwnerID != userID {
			return types.Authorization("only the owner of a petition may delete a support tier")
		}

		exists, err := TierExists(tx, tierID, petitionID)
		if err != nil {
			return err
		}
		if !exists {
			return types.NotFound("support tier %d not found on petition %d", tierID, petitionID)
		}

		pledged, err := TierHasSupporters(tx, tierID)
		if err != nil {
			return err
		}
		if pledged {
			return types.Conflict("cannot delete a support tier with one or more supporters")
		}

		only, err := IsOnlyTier(tx, tierID, petitionID)
		if err != nil {
			return err
		}
		if only {
			return types.Conflict("cannot delete the only support tier of a petition")
		}

		if err := tx.Delete(&models.SupportTier{}, tierID).Error; err != nil {
			return types.Storage(err)
		}
		return nil
	})
}
