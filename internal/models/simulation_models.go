package models

import "time"

// SimulationStatus is the lifecycle of the simulation record itself.
type SimulationStatus string

const (
	SimulationDraft     SimulationStatus = "DRAFT"
	SimulationConfirmed SimulationStatus = "CONFIRMED"
	SimulationCompleted SimulationStatus = "COMPLETED"
	SimulationCancelled SimulationStatus = "CANCELLED"
)

// EnvoiStatus is the lifecycle of the physical shipment once confirmed.
type EnvoiStatus string

const (
	EnvoiPending   EnvoiStatus = "PENDING"
	EnvoiSent      EnvoiStatus = "SENT"
	EnvoiDelivered EnvoiStatus = "DELIVERED"
	EnvoiCancelled EnvoiStatus = "CANCELLED"
	EnvoiReturned  EnvoiStatus = "RETURNED"
)

// Simulation is a draft shipment quote before payment/confirmation.
type Simulation struct {
	ID                string           `json:"id"`
	UserID            *string          `json:"user_id,omitempty"`
	DestinataireID    *string          `json:"destinataire_id,omitempty"`
	DepartureAgencyID string           `json:"departure_agency_id"`
	ArrivalAgencyID   string           `json:"arrival_agency_id"`
	Parcels           []Parcel         `json:"parcels"`
	TotalWeight       float64          `json:"total_weight"`
	TotalVolume       float64          `json:"total_volume"`
	TotalPrice        float64          `json:"total_price"`
	DepartureDate     time.Time        `json:"departure_date"`
	ArrivalDate       time.Time        `json:"arrival_date"`
	SimulationStatus  SimulationStatus `json:"simulation_status"`
	EnvoiStatus       EnvoiStatus      `json:"envoi_status"`
	VerificationToken string           `json:"-"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// CreateSimulationRequest is the body of POST /simulations.
// Parcel rules, positivity included, are checked at struct level.
type CreateSimulationRequest struct {
	DepartureAgencyID string           `json:"departureAgencyId" validate:"required"`
	ArrivalAgencyID   string           `json:"arrivalAgencyId" validate:"required,nefield=DepartureAgencyID"`
	Parcels           []Parcel         `json:"parcels" validate:"required,min=1,dive"`
	TotalWeight       float64          `json:"totalWeight" validate:"gte=0"`
	TotalVolume       float64          `json:"totalVolume" validate:"gte=0"`
	TotalPrice        float64          `json:"totalPrice" validate:"gte=0"`
	DepartureDate     time.Time        `json:"departureDate"`
	ArrivalDate       time.Time        `json:"arrivalDate"`
	SimulationStatus  SimulationStatus `json:"simulationStatus" validate:"omitempty,oneof=DRAFT CONFIRMED COMPLETED CANCELLED"`
	EnvoiStatus       EnvoiStatus      `json:"envoiStatus" validate:"omitempty,oneof=PENDING SENT DELIVERED CANCELLED RETURNED"`
	UserID            *string          `json:"userId,omitempty"`
	DestinataireID    *string          `json:"destinataireId,omitempty"`
}

// SimulationCreated is the answer of a successful creation.
type SimulationCreated struct {
	ID                string `json:"id"`
	VerificationToken string `json:"verificationToken"`
}

// ConfirmSimulationRequest turns a draft into an envoi.
type ConfirmSimulationRequest struct {
	DestinataireID *string `json:"destinataireId,omitempty" validate:"omitempty,uuid"`
}
