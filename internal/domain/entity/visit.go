package entity

import "time"

// VisitRole is who signed in at the kiosk.
type VisitRole string

const (
	RoleResident       VisitRole = "resident"
	RoleGuest          VisitRole = "guest"
	RoleVendor         VisitRole = "vendor"
	RoleStaff          VisitRole = "staff"
	RoleFutureResident VisitRole = "futureResident"
)

// Visit is one kiosk sign-in. Written by the intake kiosk; read-only here
// apart from SignedOutAt.
type Visit struct {
	ID                   string     `json:"id"`
	PropertyID           string     `json:"propertyId"`
	FullName             string     `json:"fullName"`
	Role                 VisitRole  `json:"role"`
	UnitLabel            string     `json:"unitLabel"`
	Reason               string     `json:"reason"`
	StaffDepartmentRole  string     `json:"staffDepartmentRole"`
	StaffPrimaryLocation string     `json:"staffPrimaryLocation"`
	VendorCompany        string     `json:"vendorCompany"`
	VendorService        string     `json:"vendorService"`
	FutureResidentEmail  string     `json:"futureResidentEmail"`
	FutureResidentPhone  string     `json:"futureResidentPhone"`
	CreatedAt            *time.Time `json:"createdAt"`
	SignedOutAt          *time.Time `json:"signedOutAt"`
}
