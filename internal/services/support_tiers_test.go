package services_test

import (
	"testing"

	"github.com/petitionhub/petitiondb/internal/services"
	"github.com/petitionhub/petitiondb/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddSupportTierCeiling(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	cat := createCategory(t, db, "Animals")
	petition := createPetition(t, db, "Alpha", "d", owner.ID, cat.ID, 1, 2, 3)

	_, err := services.AddSupportTier(db, owner.ID, petition.ID, services.SupportTierInput{
		Title: "Platinum", Description: "d", Cost: 50,
	})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindConflict))
}

func TestAddSupportTierGates(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	other := createUser(t, db, "other@example.com")
	cat := createCategory(t, db, "Animals")
	petition := createPetition(t, db, "Alpha", "d", owner.ID, cat.ID, 1)

	input := services.SupportTierInput{Title: "Silver", Description: "d", Cost: 5}

	_, err := services.AddSupportTier(db, owner.ID, 999, input)
	assert.True(t, types.IsKind(err, types.KindNotFound))

	_, err = services.AddSupportTier(db, other.ID, petition.ID, input)
	assert.True(t, types.IsKind(err, types.KindAuthorization))

	// Duplicate title within the petition
	dup := services.SupportTierInput{Title: "Bronze", Description: "d", Cost: 5}
	_, err = services.AddSupportTier(db, owner.ID, petition.ID, dup)
	assert.True(t, types.IsKind(err, types.KindConflict))

	tierID, err := services.AddSupportTier(db, owner.ID, petition.ID, input)
	require.NoError(t, err)
	assert.Positive(t, tierID)
}

func TestUpdateSupportTierFrozenByPledge(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	backer := createUser(t, db, "backer@example.com")
	cat := createCategory(t, db, "Animals")
	petition := createPetition(t, db, "Alpha", "d", owner.ID, cat.ID, 1, 2)
	addSupporter(t, db, petition, 0, backer.ID)

	pledgedTier := petition.SupportTiers[0].ID
	freeTier := petition.SupportTiers[1].ID

	err := services.UpdateSupportTier(db, owner.ID, petition.ID, pledgedTier, services.UpdateSupportTierInput{
		Cost: floatPtr(99),
	})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindConflict))

	err = services.UpdateSupportTier(db, owner.ID, petition.ID, freeTier, services.UpdateSupportTierInput{
		Cost: floatPtr(99),
	})
	require.NoError(t, err)
}

func TestUpdateSupportTierTitleConflict(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	cat := createCategory(t, db, "Animals")
	petition := createPetition(t, db, "Alpha", "d", owner.ID, cat.ID, 1, 2)

	err := services.UpdateSupportTier(db, owner.ID, petition.ID, petition.SupportTiers[1].ID,
		services.UpdateSupportTierInput{Title: strPtr("Bronze")})
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindConflict))
}

func TestDeleteSupportTierGates(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	backer := createUser(t, db, "backer@example.com")
	cat := createCategory(t, db, "Animals")
	petition := createPetition(t, db, "Alpha", "d", owner.ID, cat.ID, 1, 2)
	addSupporter(t, db, petition, 0, backer.ID)

	// Pledged tier cannot go away
	err := services.DeleteSupportTier(db, owner.ID, petition.ID, petition.SupportTiers[0].ID)
	assert.True(t, types.IsKind(err, types.KindConflict))

	// Unpledged sibling can
	err = services.DeleteSupportTier(db, owner.ID, petition.ID, petition.SupportTiers[1].ID)
	require.NoError(t, err)

	// Last remaining tier cannot go away even after the pledge is removed
	require.NoError(t, db.Exec("DELETE FROM supporters").Error)
	err = services.DeleteSupportTier(db, owner.ID, petition.ID, petition.SupportTiers[0].ID)
	assert.True(t, types.IsKind(err, types.KindConflict))
}

func TestDeleteSupportTierUnknownTier(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	cat := createCategory(t, db, "Animals")
	petition := createPetition(t, db, "Alpha", "d", owner.ID, cat.ID, 1, 2)

	err := services.DeleteSupportTier(db, owner.ID, petition.ID, 999)
	assert.True(t, types.IsKind(err, types.KindNotFound))
}

func TestDeleteSupportTierOwnershipPrecedesLookup(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	other := createUser(t, db, "other@example.com")
	cat := createCategory(t, db, "Animals")
	petition := createPetition(t, db, "Alpha", "d", owner.ID, cat.ID, 1, 2)

	// A non-owner is turned away before the tier id is looked up
	err := services.DeleteSupportTier(db, other.ID, petition.ID, 999)
	assert.True(t, types.IsKind(err, types.KindAuthorization))

	err = services.DeleteSupportTier(db, other.ID, petition.ID, petition.SupportTiers[0].ID)
	assert.True(t, types.IsKind(err, types.KindAuthorization))
}

func TestAddSupportTierInputValidation(t *testing.T) {
	db := setupTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	cat := createCategory(t, db, "Animals")
	petition := createPetition(t, db, "Alpha", "d", owner.ID, cat.ID, 1)

	for _, input := range []services.SupportTierInput{
		{Title: "", Description: "d", Cost: 5},
		{Title: "Silver", Description: "", Cost: 5},
		{Title: "Silver", Description: "d", Cost: -1},
	} {
		_, err := services.AddSupportTier(db, owner.ID, petition.ID, input)
		require.Error(t, err)
		assert.True(t, types.IsKind(err, types.KindValidation))
	}

	// Decimal costs are legal
	tierID, err := services.AddSupportTier(db, owner.ID, petition.ID, services.SupportTierInput{
		Title: "Silver", Description: "d", Cost: 7.25,
	})
	require.NoError(t, err)
	assert.Positive(t, tierID)
}
