package services

import (
	"context"
	"testing"

	"itinerary-collab/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessService(t *testing.T) {
	store := newFakeStore()
	store.access[42] = &models.ItineraryAccess{ItineraryID: 42, OwnerID: 7, AcceptedCollaboratorUserIDs: []int{9}}
	access := NewAccessService(store)
	ctx := context.Background()

	t.Run("owner", func(t *testing.T) {
		assert.True(t, access.CanAccess(ctx, 7, 42))
	})

	t.Run("accepted collaborator", func(t *testing.T) {
		assert.True(t, access.CanAccess(ctx, 9, 42))
	})

	t.Run("stranger", func(t *testing.T) {
		assert.False(t, access.CanAccess(ctx, 11, 42))
	})

	t.Run("unknown itinerary", func(t *testing.T) {
		allowed, err := access.Check(ctx, 7, 99)
		require.NoError(t, err)
		assert.False(t, allowed)
	})
}

func TestAccessServiceDeniesOnLookupFailure(t *testing.T) {
	store := newFakeStore()
	store.access[42] = &models.ItineraryAccess{ItineraryID: 42, OwnerID: 7}
	store.accessErr = errStoreDown
	access := NewAccessService(store)

	_, err := access.Check(context.Background(), 7, 42)
	assert.ErrorIs(t, err, errStoreDown)

	assert.False(t, access.CanAccess(context.Background(), 7, 42))
}
