package home

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateHomeRequest, realtorID string) Home {
	now := time.Now().UTC()

	return Home{
		ID:           uuid.NewString(),
		Address:      req.Address,
		City:         req.City,
		Price:        req.Price,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		LandSize:     req.LandSize,
		PropertyType: req.PropertyType,
		RealtorID:    realtorID,
		ListedDate:   now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
