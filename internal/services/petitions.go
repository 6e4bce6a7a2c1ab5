package services

import (
	"errors"
	"time"

	"github.com/petitionhub/petitiondb/internal/models"
	"github.com/petitionhub/petitiondb/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	minSupportTiers = 1
	maxSupportTiers = 3
)

// SupportTierInput is the tier payload for petition creation and AddSupportTier.
type SupportTierInput struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Cost        types.FlexFloat64 `json:"cost"`
}

func (in SupportTierInput) validate() error {
	if in.Title == "" {
		return types.Validation("support tier title must not be empty")
	}
	if in.Description == "" {
		return types.Validation("support tier description must not be empty")
	}
	if in.Cost < 0 {
		return types.Validation("support tier cost must not be negative")
	}
	return nil
}

// UpdatePetitionInput carries the patch fields; nil means "keep prior value".
type UpdatePetitionInput struct {
	Title       *string
	Description *string
	CategoryID  *int64
}

// SupportTierView is one tier of a petition detail response.
type SupportTierView struct {
	SupportTierID int64   `json:"supportTierId"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Cost          float64 `json:"cost"`
}

// PetitionDetail is the full single-petition response.
type PetitionDetail struct {
	PetitionID         int64             `json:"petitionId"`
	Title              string            `json:"title"`
	CategoryID         int64             `json:"categoryId"`
	OwnerID            int64             `json:"ownerId"`
	OwnerFirstName     string            `json:"ownerFirstName"`
	OwnerLastName      string            `json:"ownerLastName"`
	NumberOfSupporters int64             `json:"numberOfSupporters"`
	CreationDate       time.Time         `json:"creationDate"`
	Description        string            `json:"description"`
	MoneyRaised        float64           `json:"moneyRaised"`
	SupportTiers       []SupportTierView `json:"supportTiers"`
}

// lockForUpdate takes a row lock so gate checks and the dependent mutation
// see the same state. SQLite serializes writers and rejects the clause.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// CreatePetition inserts a petition and its 1-3 tiers as one transaction.
// Gate order: category existence, tier cardinality, tier-title uniqueness
// within the input set, global title uniqueness.
func CreatePetition(db *gorm.DB, ownerID int64, title, description string, categoryID int64, tiers []SupportTierInput) (int64, error) {
	if len(tiers) < minSupportTiers || len(tiers) > maxSupportTiers {
		return 0, types.Validation("a petition must have between %d and %d support tiers", minSupportTiers, maxSupportTiers)
	}
	seen := make(map[string]struct{}, len(tiers))
	for _, tier := range tiers {
		if err := tier.validate(); err != nil {
			return 0, err
		}
		if _, dup := seen[tier.Title]; dup {
			return 0, types.Validation("each support tier title must be unique")
		}
		seen[tier.Title] = struct{}{}
	}

	var petitionID int64
	err := db.Transaction(func(tx *gorm.DB) error {
		ok, err := CategoryExists(tx, categoryID)
		if err != nil {
			return err
		}
		if !ok {
			return types.Validation("category %d does not exist", categoryID)
		}

		unique, err := IsTitleUnique(tx, title)
		if err != nil {
			return err
		}
		if !unique {
			return types.Conflict("petition title already exists")
		}

		petition := models.Petition{
			Title:       title,
			Description: description,
			OwnerID:     ownerID,
			CategoryID:  categoryID,
		}
		if err := tx.Create(&petition).Error; err != nil {
			return translateWriteError(err, "petition title already exists")
		}

		for _, tier := range tiers {
			row := models.SupportTier{
				PetitionID:  petition.ID,
				Title:       tier.Title,
				Description: tier.Description,
				Cost:        float64(tier.Cost),
			}
			if err := tx.Create(&row).Error; err != nil {
				return translateWriteError(err, "support tier title not unique within the petition")
			}
		}

		petitionID = petition.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return petitionID, nil
}

// GetPetition returns the full detail for one petition, including the
// derived moneyRaised and the tier list.
func GetPetition(db *gorm.DB, petitionID int64) (*PetitionDetail, error) {
	var petition models.Petition
	err := db.Preload("SupportTiers").Joins("Owner").First(&petition, petitionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("petition %d not found", petitionID)
		}
		return nil, types.Storage(err)
	}

	var supporterCount int64
	if err := db.Model(&models.Supporter{}).Where("petition_id = ?", petitionID).Count(&supporterCount).Error; err != nil {
		return nil, types.Storage(err)
	}

	var moneyRaised *float64
	err = db.Model(&models.Supporter{}).
		Select("SUM(support_tiers.cost)").
		Joins("JOIN support_tiers ON support_tiers.id = supporters.support_tier_id").
		Where("supporters.petition_id = ?", petitionID).
		Scan(&moneyRaised).Error
	if err != nil {
		return nil, types.Storage(err)
	}

	detail := &PetitionDetail{
		PetitionID:         petition.ID,
		Title:              petition.Title,
		CategoryID:         petition.CategoryID,
		OwnerID:            petition.OwnerID,
		OwnerFirstName:     petition.Owner.FirstName,
		OwnerLastName:      petition.Owner.LastName,
		NumberOfSupporters: supporterCount,
		CreationDate:       petition.CreationDate,
		Description:        petition.Description,
		SupportTiers:       make([]SupportTierView, 0, len(petition.SupportTiers)),
	}
	if moneyRaised != nil {
		detail.MoneyRaised = *moneyRaised
	}
	for _, tier := range petition.SupportTiers {
		detail.SupportTiers = append(detail.SupportTiers, SupportTierView{
			SupportTierID: tier.ID,
			Title:         tier.Title,
			Description:   tier.Description,
			Cost:          tier.Cost,
		})
	}
	return detail, nil
}

// UpdatePetition patches the supplied fields. Gate order: petition
// existence, ownership, then title uniqueness when a new title is supplied.
func UpdatePetition(db *gorm.DB, userID, petitionID int64, input UpdatePetitionInput) error {
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
			return types.Authorization("only the owner of a petition may change it")
		}

		updates := map[string]any{}
		if input.Title != nil && *input.Title != petition.Title {
			unique, err := IsTitleUnique(tx, *input.Title)
			if err != nil {
				return err
			}
			if !unique {
				return types.Conflict("petition title already exists")
			}
			updates["title"] = *input.Title
		}
		if input.Description != nil {
			updates["description"] = *input.Description
		}
		if input.CategoryID != nil {
			ok, err := CategoryExists(tx, *input.CategoryID)
			if err != nil {
				return err
			}
			if !ok {
				return types.Validation("category %d does not exist", *input.CategoryID)
			}
			updates["category_id"] = *input.CategoryID
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&petition).Updates(updates).Error; err != nil {
			return translateWriteError(err, "petition title already exists")
		}
		return nil
	})
}

// DeletePetition removes a petition and its tiers. Gate order: petition
// existence, ownership, supporter-presence lock. No tier can have supporters
// once the petition has none, so removing the tiers is safe here.
func DeletePetition(db *gorm.DB, userID, petitionID int64) error {
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
			return types.Authorization("only the owner of a petition may delete it")
		}

		supported, err := PetitionHasSupporters(tx, petitionID)
		if err != nil {
			return err
		}
		if supported {
			return types.Conflict("cannot delete a petition with one or more supporters")
		}

		if err := tx.Where("petition_id = ?", petitionID).Delete(&models.SupportTier{}).Error; err != nil {
			return types.Storage(err)
		}
		if err := tx.Delete(&models.Petition{}, petitionID).Error; err != nil {
			return types.Storage(err)
		}
		return nil
	})
}

// GetCategories lists the category reference data.
func GetCategories(db *gorm.DB) ([]models.Category, error) {
	categories := make([]models.Category, 0)
	if err := db.Order("id ASC").Find(&categories).Error; err != nil {
		return nil, types.Storage(err)
	}
	return categories, nil
}

// translateWriteError maps a duplicate-key failure (the storage-level
// uniqueness backstop) to a conflict, everything else to a storage error.
func translateWriteError(err error, conflictMessage string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return types.Conflict("%s", conflictMessage)
	}
	return types.Storage(err)
}
