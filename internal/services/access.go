package services

import (
	"context"
	"errors"

	"itinerary-collab/internal/database"
	"itinerary-collab/pkg/logger"
)

var ErrAccessDenied = errors.New("access denied to this itinerary")

// AccessService answers whether a user may act on an itinerary: owners and
// accepted collaborators may, everyone else may not.
type AccessService struct {
	itineraries database.ItineraryRepository
}

func NewAccessService(itineraries database.ItineraryRepository) *AccessService {
	return &AccessService{itineraries: itineraries}
}

// Check reports the access decision, returning an error only when the lookup
// itself failed. Unknown itineraries are denied without error.
func (s *AccessService) Check(ctx context.Context, userID, itineraryID int) (bool, error) {
	access, err := s.itineraries.GetItineraryAccess(ctx, itineraryID)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return access.Allows(userID), nil
}

// CanAccess is Check with deny-by-default on lookup failure. The failure is
// logged and never reaches the caller.
func (s *AccessService) CanAccess(ctx context.Context, userID, itineraryID int) bool {
	allowed, err := s.Check(ctx, userID, itineraryID)
	if err != nil {
		logger.Error("Access check failed for user %d on itinerary %d: %v", userID, itineraryID, err)
		return false
	}
	return allowed
}
