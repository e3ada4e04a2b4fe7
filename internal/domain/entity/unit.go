package entity

// Unit is a rentable unit and who lives there.
type Unit struct {
	ID            string `json:"id"`
	PropertyID    string `json:"propertyId"`
	UnitLabel     string `json:"unitLabel"`
	ResidentNames string `json:"residentNames"`
	Active        bool   `json:"active"`
	Notes         string `json:"notes"`
}

// UnitInput is the create/update form. Active only applies on create and
// defaults to true.
type UnitInput struct {
	UnitLabel     string `json:"unitLabel" validate:"required"`
	ResidentNames string `json:"residentNames"`
	Notes         string `json:"notes"`
	Active        *bool  `json:"active"`
}
