package services

import (
	"errors"
	"time"

	"github.com/petitionhub/petitiondb/internal/models"
	"github.com/petitionhub/petitiondb/internal/types"
	"gorm.io/gorm"
)

// SupporterView is one pledge row of a petition's supporter listing.
type SupporterView struct {
	SupportID          int64     `json:"supportId"`
	SupportTierID      int64     `json:"supportTierId"`
	Message            *string   `json:"message"`
	SupporterID        int64     `json:"supporterId"`
	SupporterFirstName string    `json:"supporterFirstName"`
	SupporterLastName  string    `json:"supporterLastName"`
	Timestamp          time.Time `json:"timestamp"`
}

// GetSupporters lists a petition's pledges newest first, with the pledge id
// as a deterministic tie-break for equal timestamps.
func GetSupporters(db *gorm.DB, petitionID int64) ([]SupporterView, error) {
	exists, err := PetitionExists(db, petitionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, types.NotFound("petition %d not found", petitionID)
	}

	supporters := make([]SupporterView, 0)
	err = db.Table("supporters s").
		Select(`s.id AS support_id,
			s.support_tier_id,
			s.message,
			s.user_id AS supporter_id,
			u.first_name AS supporter_first_name,
			u.last_name AS supporter_last_name,
			s.timestamp`).
		Joins("JOIN users u ON u.id = s.user_id").
		Where("s.petition_id = ?", petitionID).
		Order("s.timestamp DESC, s.id DESC").
		Scan(&supporters).Error
	if err != nil {
		return nil, types.Storage(err)
	}
	return supporters, nil
}

// AddSupporter records a pledge at one of the petition's tiers. Gate order:
// petition existence, not-the-owner, tier existence within the petition,
// no prior pledge by this user at this tier. Timestamp is server-assigned.
func AddSupporter(db *gorm.DB, userID, petitionID, tierID int64, message *string) (int64, error) {
	var supportID int64
	err := db.Transaction(func(tx *gorm.DB) error {
		var petition models.Petition
		err := lockForUpdate(tx).First(&petition, petitionID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NotFound("petition %d not found", petitionID)
			}
			return types.Storage(err)
		}
		if petition.OwnerID == userID {
			return types.Conflict("cannot support your own petition")
		}

		exists, err := TierExists(tx, tierID, petitionID)
		if err != nil {
			return err
		}
		if !exists {
			return types.NotFound("support tier %d not found on petition %d", tierID, petitionID)
		}

		already, err := HasSupportedAtTier(tx, userID, petitionID, tierID)
		if err != nil {
			return err
		}
		if already {
			return types.Conflict("already supported at this tier")
		}

		supporter := models.Supporter{
			PetitionID:    petitionID,
			SupportTierID: tierID,
			UserID:        userID,
			Message:       message,
		}
		if err := tx.Create(&supporter).Error; err != nil {
			return translateWriteError(err, "already supported at this tier")
		}
		supportID = supporter.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return supportID, nil
}
