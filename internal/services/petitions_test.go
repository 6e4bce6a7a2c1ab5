package services_test

import (
	"testing"

	"github.com/petitionhub/petitiondb/internal/services"
	"github.com/petitionhub/petitiondb/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tiers(costs ...float64) []services.SupportTierInput {
	names := []string{"Bronze", "Silver", "Gold", "Platinum", "Diamond"}
	out := make([]services.SupportTierInput, 0, len(costs))
	for i, cost := range costs {
		out = append(out, services.SupportTierInput{
			Title:       names[i],
			Description: names[i] + " tier",
			Cost:        types.FlexFloat64(cost),
		})
	}
	return out
}

func TestCreatePetitionTierCardinality(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	cat := createCategory(t, db, "Animals")

	for _, n := range []int{0, 4, 5} {
		costs := make([]float64, n)
		_, err := services.CreatePetition(db, owner.ID, "Petition", "d", cat.ID, tiers(costs...))
		require.Error(t, err, "tier count %d must be rejected", n)
		assert.True(t, types.IsKind(err, types.KindValidation))
	}

	for i, n := range []int{1, 2, 3} {
		title := []string{"One", "Two", "Three"}[i]
		costs := make([]float64, n)
		id, err := services.CreatePetition(db, owner.ID, title, "d", cat.ID, tiers(costs...))
		require.NoError(t, err, "tier count %d must be accepted", n)
		assert.Positive(t, id)
	}
}

func TestCreatePetitionDuplicateTierTitles(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	cat := createCategory(t, db, "Animals")

	input := []services.SupportTierInput{
		{Title: "Same", Description: "a", Cost: 1},
		{Title: "Same", Description: "b", Cost: 2},
	}
	_, err := services.CreatePetition(db, owner.ID, "Petition", "d", cat.ID, input)
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindValidation))
}

func TestCreatePetitionTitleConflict(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	cat := createCategory(t, db, "Animals")

	_, err := services.CreatePetition(db, owner.ID, "Unique title", "d", cat.ID, tiers(1))
	require.NoError(t, err)

	_, err = services.CreatePetition(db, owner.ID, "Unique title", "d", cat.ID, tiers(1))
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindConflict))
}

func TestCreatePetitionUnknownCategory(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")

	_, err := services.CreatePetition(db, owner.ID, "Petition", "d", 42, tiers(1))
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindValidation))
}

func TestGetPetitionDetail(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	backer := createUser(t, db, "backer@example.com")
	cat := createCategory(t, db, "Animals")
	petition := createPetition(t, db, "Alpha", "details", owner.ID, cat.ID, 5, 20)
	addSupporter(t, db, petition, 0, backer.ID)
	addSupporter(t, db, petition, 1, backer.ID)

	detail, err := services.GetPetition(db, petition.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", detail.Title)
	assert.Equal(t, owner.ID, detail.OwnerID)
	assert.Equal(t, int64(2), detail.NumberOfSupporters)
	assert.Equal(t, 25.0, detail.MoneyRaised)
	assert.Len(t, detail.SupportTiers, 2)
}

func TestGetPetitionNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := services.GetPetition(db, 12345)
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindNotFound))
}

func TestUpdatePetitionGates(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	other := createUser(t, db, "other@example.com")
	cat := createCategory(t, db, "Animals")
	petition := createPetition(t, db, "Alpha", "d", owner.ID, cat.ID, 1)
	createPetition(t, db, "Bravo", "d", owner.ID, cat.ID, 1)

	err := services.UpdatePetition(db, owner.ID, 999, services.UpdatePetitionInput{Title: strPtr("X")})
	assert.True(t, types.IsKind(err, types.KindNotFound))

	err = services.UpdatePetition(db, other.ID, petition.ID, services.UpdatePetitionInput{Title: strPtr("X")})
	assert.True(t, types.IsKind(err, types.KindAuthorization))

	err = services.UpdatePetition(db, owner.ID, petition.ID, services.UpdatePetitionInput{Title: strPtr("Bravo")})
	assert.True(t, types.IsKind(err, types.KindConflict))

	err = services.UpdatePetition(db, owner.ID, petition.ID, services.UpdatePetitionInput{Title: strPtr("Charlie")})
	require.NoError(t, err)

	detail, err := services.GetPetition(db, petition.ID)
	require.NoError(t, err)
	assert.Equal(t, "Charlie", detail.Title)
}

func TestDeletePetitionWithSupporters(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	backer := createUser(t, db, "backer@example.com")
	cat := createCategory(t, db, "Animals")
	petition := createPetition(t, db, "Alpha", "d", owner.ID, cat.ID, 1)
	addSupporter(t, db, petition, 0, backer.ID)

	err := services.DeletePetition(db, owner.ID, petition.ID)
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindConflict))

	// Still present
	_, err = services.GetPetition(db, petition.ID)
	require.NoError(t, err)
}

func TestDeletePetitionRemovesTiers(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	cat := createCategory(t, db, "Animals")
	petition := createPetition(t, db, "Alpha", "d", owner.ID, cat.ID, 1, 2)

	require.NoError(t, services.DeletePetition(db, owner.ID, petition.ID))

	_, err := services.GetPetition(db, petition.ID)
	assert.True(t, types.IsKind(err, types.KindNotFound))

	count, err := services.TierCount(db, petition.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGetCategories(t *testing.T) {
	db := setupTestDB(t)
	createCategory(t, db, "Animals")
	createCategory(t, db, "Environment")

	categories, err := services.GetCategories(db)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Animals", categories[0].Name)
}

func TestCreatePetitionTierInputValidation(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	cat := createCategory(t, db, "Animals")

	for _, input := range [][]services.SupportTierInput{
		{{Title: "", Description: "d", Cost: 1}},
		{{Title: "Bronze", Description: "", Cost: 1}},
		{{Title: "Bronze", Description: "d", Cost: -1}},
	} {
		_, err := services.CreatePetition(db, owner.ID, "Petition", "d", cat.ID, input)
		require.Error(t, err)
		assert.True(t, types.IsKind(err, types.KindValidation))
	}
}

func TestCreatePetitionDecimalCost(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	cat := createCategory(t, db, "Animals")

	id, err := services.CreatePetition(db, owner.ID, "Decimal", "d", cat.ID,
		[]services.SupportTierInput{{Title: "Bronze", Description: "d", Cost: 5.5}})
	require.NoError(t, err)

	detail, err := services.GetPetition(db, id)
	require.NoError(t, err)
	require.Len(t, detail.SupportTiers, 1)
	assert.Equal(t, 5.5, detail.SupportTiers[0].Cost)
}
