package types

import (
	"time"

	"github.com/google/uuid"
)

// ItineraryItemKind is the booking category of an itinerary entry.
type ItineraryItemKind string

const (
	ItemFlight   ItineraryItemKind = "flight"
	ItemHotel    ItineraryItemKind = "hotel"
	ItemActivity ItineraryItemKind = "activity"
)

// ItineraryItem is one entry of a session's day-indexed trip plan.
type ItineraryItem struct {
	ID        uuid.UUID         `json:"id"`
	SessionID uuid.UUID         `json:"session_id"`
	Day       int               `json:"day"`
	Kind      ItineraryItemKind `json:"kind"`
	Title     string            `json:"title"`
	Location  string            `json:"location,omitempty"`
	StartTime *time.Time        `json:"start_time,omitempty"`
	EndTime   *time.Time        `json:"end_time,omitempty"`
	Cost      *float64          `json:"cost,omitempty"`
	Currency  string            `json:"currency,omitempty"`
	Notes     string            `json:"notes,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type CreateItineraryItemRequest struct {
	Day       int               `json:"day"`
	Kind      ItineraryItemKind `json:"kind"`
	Title     string            `json:"title"`
	Location  string            `json:"location,omitempty"`
	StartTime *time.Time        `json:"start_time,omitempty"`
	EndTime   *time.Time        `json:"end_time,omitempty"`
	Cost      *float64          `json:"cost,omitempty"`
	Currency  string            `json:"currency,omitempty"`
	Notes     string            `json:"notes,omitempty"`
}

type UpdateItineraryItemParams struct {
	Day       *int       `json:"day,omitempty"`
	Title     *string    `json:"title,omitempty"`
	Location  *string    `json:"location,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Cost      *float64   `json:"cost,omitempty"`
	Currency  *string    `json:"currency,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
}

// ItineraryDay groups items for the list endpoint.
type ItineraryDay struct {
	Day   int             `json:"day"`
	Items []ItineraryItem `json:"items"`
}

// ItinerarySummary aggregates per-kind counts and total cost for a session.
type ItinerarySummary struct {
	SessionID  uuid.UUID `json:"session_id"`
	Flights    int       `json:"flights"`
	Hotels     int       `json:"hotels"`
	Activities int       `json:"activities"`
	TotalCost  float64   `json:"total_cost"`
}
