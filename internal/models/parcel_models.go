package models

// Parcel is one physical package of a shipment. Dimensions are in
// centimetres, weight in kilograms. Rules live in package parcel.
type Parcel struct {
	Height float64 `json:"height"`
	Width  float64 `json:"width"`
	Length float64 `json:"length"`
	Weight float64 `json:"weight"`
}

// Volume returns L×W×H in cm³.
func (p Parcel) Volume() float64 {
	return p.Length * p.Width * p.Height
}
