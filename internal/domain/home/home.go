package home

import (
	"errors"
	"time"
)

type PropertyType string

const (
	PropertyResidential PropertyType = "RESIDENTIAL"
	PropertyCondo       PropertyType = "CONDO"
)

var ErrNotFound = errors.New("home not found")

type Home struct {
	ID           string       `json:"id"`
	Address      string       `json:"address"`
	City         string       `json:"city"`
	Price        float64      `json:"price"`
	Bedrooms     int          `json:"numberOfBedrooms"`
	Bathrooms    int          `json:"numberOfBathrooms"`
	LandSize     float64      `json:"landSize"`
	PropertyType PropertyType `json:"propertyType"`
	RealtorID    string       `json:"-"`
	Image        string       `json:"image,omitempty"`
	ListedDate   time.Time    `json:"listedDate"`
	CreatedAt    time.Time    `json:"-"`
	UpdatedAt    time.Time    `json:"-"`
}

type Image struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	HomeID string `json:"-"`
}

// Realtor is the contact slice of the listing owner returned alongside
// a single home and used for ownership checks.
type Realtor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// optional filters are pointers, nil means "not supplied"
type ListHomesFilter struct {
	City         *string
	MinPrice     *float64
	MaxPrice     *float64
	PropertyType *PropertyType
	Limit        int
	Offset       int
}

type ImageInput struct {
	URL string `json:"url" binding:"required,url"`
}

type CreateHomeRequest struct {
	Address      string       `json:"address" binding:"required,min=3,max=200"`
	City         string       `json:"city" binding:"required,min=2,max=80"`
	Price        float64      `json:"price" binding:"required,gt=0"`
	Bedrooms     int          `json:"numberOfBedrooms" binding:"required,min=1,max=50"`
	Bathrooms    int          `json:"numberOfBathrooms" binding:"required,min=1,max=50"`
	LandSize     float64      `json:"landSize" binding:"required,gt=0"`
	PropertyType PropertyType `json:"propertyType" binding:"required,oneof=RESIDENTIAL CONDO"`
	Images       []ImageInput `json:"images" binding:"required,min=1,dive"`
}

// partial update: nil fields keep their stored value
type UpdateHomeRequest struct {
	Address      *string       `json:"address" binding:"omitempty,min=3,max=200"`
	City         *string       `json:"city" binding:"omitempty,min=2,max=80"`
	Price        *float64      `json:"price" binding:"omitempty,gt=0"`
	Bedrooms     *int          `json:"numberOfBedrooms" binding:"omitempty,min=1,max=50"`
	Bathrooms    *int          `json:"numberOfBathrooms" binding:"omitempty,min=1,max=50"`
	LandSize     *float64      `json:"landSize" binding:"omitempty,gt=0"`
	PropertyType *PropertyType `json:"propertyType" binding:"omitempty,oneof=RESIDENTIAL CONDO"`
}
