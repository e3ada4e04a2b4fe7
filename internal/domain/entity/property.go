package entity

// Property is the aggregate root for everything the console manages.
type Property struct {
	ID               string               `json:"id"`
	Name             string               `json:"name"`
	LogoURL          string               `json:"logoUrl,omitempty"`
	HaveUnits        bool                 `json:"haveUnits"`
	SlideURLs        []string             `json:"slideShowImageUrls"`
	StaffDepartments []string             `json:"staffDepartments,omitempty"`
	Reasons          map[string]ReasonMap `json:"reasons,omitempty"`
}

// ReasonMap groups kiosk sign-in reasons by category.
type ReasonMap map[string][]string

// PropertySummary is one entry of an admin's property picker.
type PropertySummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
