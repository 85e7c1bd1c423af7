package models

import "time"

// Option is one entry of a cascading dropdown: a country, a city or an agency.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Agency is a physical location serving as shipment origin or destination.
type Agency struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CityID    string    `json:"city_id"`
	CountryID string    `json:"country_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateAgencyRequest is the admin payload to register an agency.
type CreateAgencyRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Address string `json:"address" validate:"max=255"`
	CityID  string `json:"city_id" validate:"required,uuid"`
}
