package message

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("message not found")

type Message struct {
	ID        string    `json:"id"`
	Body      string    `json:"message"`
	HomeID    string    `json:"-"`
	BuyerID   string    `json:"-"`
	RealtorID string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// BuyerContact is the slice of the sender a realtor sees when reading a
// home's message thread.
type BuyerContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Thread struct {
	Body      string       `json:"message"`
	Buyer     BuyerContact `json:"buyer"`
	CreatedAt time.Time    `json:"createdAt"`
}

type InquireRequest struct {
	Message string `json:"message" binding:"required,min=1,max=2000"`
}
