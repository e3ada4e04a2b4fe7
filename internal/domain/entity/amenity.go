package entity

// Amenity is a bookable facility of a property.
type Amenity struct {
	ID         string `json:"id"`
	PropertyID string `json:"propertyId"`
	Name       string `json:"name"`
}
