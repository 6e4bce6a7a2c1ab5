package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/petitionhub/petitiondb/internal/types"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// SortKey selects the ordering of a petition search.
type SortKey string

const (
	SortCreatedAsc      SortKey = "CREATED_ASC"
	SortCreatedDesc     SortKey = "CREATED_DESC"
	SortAlphabeticalAsc SortKey = "ALPHABETICAL_ASC"
	SortAlphabeticalDsc SortKey = "ALPHABETICAL_DESC"
	SortCostAsc         SortKey = "COST_ASC"
	SortCostDesc        SortKey = "COST_DESC"
)

// Tie-break is always the petition id ascending so repeated calls with the
// same filter produce the same order.
var sortClauses = map[SortKey]string{
	SortCreatedAsc:      "p.creation_date ASC, p.id ASC",
	SortCreatedDesc:     "p.creation_date DESC, p.id ASC",
	SortAlphabeticalAsc: "p.title ASC, p.id ASC",
	SortAlphabeticalDsc: "p.title DESC, p.id ASC",
	SortCostAsc:         "supporting_cost ASC, p.id ASC",
	SortCostDesc:        "supporting_cost DESC, p.id ASC",
}

// searchHintMillis caps search statement execution time on MySQL.
const searchHintMillis = 5000

// PetitionFilter is the structured search request. All fields are optional;
// predicates combine with logical AND.
type PetitionFilter struct {
	Query             string
	CategoryIDs       []int64
	MaxSupportingCost *float64
	OwnerID           *int64
	SupporterID       *int64
	SortBy            SortKey
	StartIndex        *int // 1-based offset into the result set
	Count             *int // max rows returned; nil = unbounded
}

// PetitionSummary is one row of a search result.
type PetitionSummary struct {
	PetitionID         int64     `json:"petitionId"`
	Title              string    `json:"title"`
	CategoryID         int64     `json:"categoryId"`
	OwnerID            int64     `json:"ownerId"`
	OwnerFirstName     string    `json:"ownerFirstName"`
	OwnerLastName      string    `json:"ownerLastName"`
	NumberOfSupporters int64     `json:"numberOfSupporters"`
	CreationDate       time.Time `json:"creationDate"`
	SupportingCost     *float64  `json:"supportingCost"`
}

// PetitionPage is a page of search results. Count is the distinct-petition
// total matching the filter before pagination.
type PetitionPage struct {
	Petitions []PetitionSummary `json:"petitions"`
	Count     int64             `json:"count"`
}

// SearchPetitions runs the filtered, sorted, paginated listing query.
// The tier/supporter joins can multiply rows, so both passes collapse to
// distinct petition identity: one counting pass over the filter predicate,
// one page select.
func SearchPetitions(db *gorm.DB, filter PetitionFilter) (*PetitionPage, error) {
	if len(filter.CategoryIDs) > 0 {
		ok, err := CategoriesExist(db, filter.CategoryIDs)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, types.Validation("no such category id(s)")
		}
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = SortCreatedAsc
	}
	orderBy, ok := sortClauses[sortBy]
	if !ok {
		return nil, types.Validation("unknown sortBy %q", string(filter.SortBy))
	}

	// base applies the filter predicate; used identically by both passes.
	base := func(tx *gorm.DB) *gorm.DB {
		q := tx.Table("petitions p").
			Joins("JOIN users u ON u.id = p.owner_id").
			Joins("LEFT JOIN support_tiers st ON st.petition_id = p.id").
			Joins("LEFT JOIN supporters s ON s.petition_id = p.id")
		if filter.Query != "" {
			like := "%" + strings.ToLower(filter.Query) + "%"
			q = q.Where("LOWER(p.title) LIKE ? OR LOWER(p.description) LIKE ?", like, like)
		}
		if len(filter.CategoryIDs) > 0 {
			q = q.Where("p.category_id IN ?", filter.CategoryIDs)
		}
		if filter.MaxSupportingCost != nil {
			q = q.Where("st.cost <= ?", *filter.MaxSupportingCost)
		}
		if filter.OwnerID != nil {
			q = q.Where("p.owner_id = ?", *filter.OwnerID)
		}
		if filter.SupporterID != nil {
			q = q.Where("s.user_id = ?", *filter.SupporterID)
		}
		return q
	}

	var total int64
	if err := base(db.Session(&gorm.Session{})).Distinct("p.id").Count(&total).Error; err != nil {
		return nil, types.Storage(err)
	}

	sel := base(db.Session(&gorm.Session{})).Select(`DISTINCT
		p.id AS petition_id,
		p.title,
		p.category_id,
		p.owner_id,
		u.first_name AS owner_first_name,
		u.last_name AS owner_last_name,
		p.creation_date,
		(SELECT COUNT(*) FROM supporters s2 WHERE s2.petition_id = p.id) AS number_of_supporters,
		(SELECT MIN(st2.cost) FROM support_tiers st2 WHERE st2.petition_id = p.id) AS supporting_cost`).
		Order(orderBy)

	if db.Dialector.Name() == "mysql" {
		sel = sel.Clauses(hints.New(fmt.Sprintf("MAX_EXECUTION_TIME(%d)", searchHintMillis)))
	}

	offset := 0
	if filter.StartIndex != nil && *filter.StartIndex > 1 {
		offset = *filter.StartIndex - 1
	}
	limit := -1
	if filter.Count != nil {
		limit = max(*filter.Count, 0)
	} else if offset > 0 {
		// OFFSET needs a LIMIT on MySQL and SQLite
		limit = math.MaxInt32
	}
	if offset > 0 {
		sel = sel.Offset(offset)
	}
	if limit >= 0 {
		sel = sel.Limit(limit)
	}

	petitions := make([]PetitionSummary, 0)
	if err := sel.Scan(&petitions).Error; err != nil {
		return nil, types.Storage(err)
	}

	return &PetitionPage{Petitions: petitions, Count: total}, nil
}
