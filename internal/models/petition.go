package models

import (
	"time"
)

// Petition is the root entity. Title uniqueness is global, not per-owner.
// CreationDate is assigned by the storage layer on insert and never updated.
type Petition struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	Title         string    `gorm:"uniqueIndex;size:128;not null"`
	Description   string    `gorm:"type:text;not null"`
	CreationDate  time.Time `gorm:"autoCreateTime;not null"`
	ImageFilename *string   `gorm:"size:64"`
	OwnerID       int64     `gorm:"not null;index"`
	Owner         User      `gorm:"foreignKey:OwnerID"`
	CategoryID    int64     `gorm:"not null;index"`
	Category      Category  `gorm:"foreignKey:CategoryID"`
	SupportTiers  []SupportTier
}

// SupportTier is a priced pledge level. A petition holds between 1 and 3
// tiers after creation; titles are unique within the parent petition, which
// the composite index also enforces at the storage level.
type SupportTier struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	PetitionID  int64   `gorm:"not null;uniqueIndex:idx_tier_petition_title"`
	Title       string  `gorm:"size:128;not null;uniqueIndex:idx_tier_petition_title"`
	Description string  `gorm:"type:text;not null"`
	Cost        float64 `gorm:"type:decimal(10,2);not null"`
}

// Supporter is one user's pledge against one tier of one petition. The
// composite index backs the at-most-once-per-tier rule; Timestamp is
// server-assigned and drives newest-first listing.
type Supporter struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	PetitionID    int64     `gorm:"not null;index;uniqueIndex:idx_supporter_once"`
	SupportTierID int64     `gorm:"not null;uniqueIndex:idx_supporter_once"`
	UserID        int64     `gorm:"not null;uniqueIndex:idx_supporter_once"`
	Message       *string   `gorm:"size:512"`
	Timestamp     time.Time `gorm:"autoCreateTime;not null;index"`
}

// TableName overrides the table name for Petition
func (Petition) TableName() string {
	return "petitions"
}

// TableName overrides the table name for SupportTier
func (SupportTier) TableName() string {
	return "support_tiers"
}

// TableName overrides the table name for Supporter
func (Supporter) TableName() string {
	return "supporters"
}
