// Package record maps stored documents to entities. Every feed and every
// repository read goes through these functions, so each timestamp field is
// normalised by the same livequery.Timestamp rule.
package record

import (
	"fmt"

	"propdesk-service/internal/domain/entity"
	"propdesk-service/internal/livequery"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Collection names.
const (
	Properties = "properties"
	Visits     = "visits"
	Amenities  = "amenities"
	Bookings   = "bookings"
	Units      = "units"
	Events     = "events"
)

type visitDoc struct {
	PropertyID           string              `bson:"propertyId"`
	FullName             string              `bson:"fullName"`
	Role                 string              `bson:"role"`
	UnitLabel            string              `bson:"unitLabel"`
	Reason               string              `bson:"reason"`
	StaffDepartmentRole  string              `bson:"staffDepartmentRole"`
	StaffPrimaryLocation string              `bson:"staffPrimaryLocation"`
	VendorCompany        string              `bson:"vendorCompany"`
	VendorService        string              `bson:"vendorService"`
	FutureResidentEmail  string              `bson:"futureResidentEmail"`
	FutureResidentPhone  string              `bson:"futureResidentPhone"`
	CreatedAt            livequery.Timestamp `bson:"createdAt"`
	SignedOutAt          livequery.Timestamp `bson:"signedOutAt"`
}

// Visit maps a visits document. Missing role defaults to guest.
func Visit(d livequery.Document) (entity.Visit, error) {
	var doc visitDoc
	if err := d.Decode(&doc); err != nil {
		return entity.Visit{}, fmt.Errorf("decode visit %s: %w", d.ID, err)
	}
	role := entity.VisitRole(doc.Role)
	if role == "" {
		role = entity.RoleGuest
	}
	return entity.Visit{
		ID:                   d.ID,
		PropertyID:           doc.PropertyID,
		FullName:             doc.FullName,
		Role:                 role,
		UnitLabel:            doc.UnitLabel,
		Reason:               doc.Reason,
		StaffDepartmentRole:  doc.StaffDepartmentRole,
		StaffPrimaryLocation: doc.StaffPrimaryLocation,
		VendorCompany:        doc.VendorCompany,
		VendorService:        doc.VendorService,
		FutureResidentEmail:  doc.FutureResidentEmail,
		FutureResidentPhone:  doc.FutureResidentPhone,
		CreatedAt:            doc.CreatedAt.Ptr(),
		SignedOutAt:          doc.SignedOutAt.Ptr(),
	}, nil
}

type amenityDoc struct {
	PropertyID string `bson:"propertyId"`
	Name       string `bson:"name"`
}

// Amenity maps an amenities document.
func Amenity(d livequery.Document) (entity.Amenity, error) {
	var doc amenityDoc
	if err := d.Decode(&doc); err != nil {
		return entity.Amenity{}, fmt.Errorf("decode amenity %s: %w", d.ID, err)
	}
	return entity.Amenity{ID: d.ID, PropertyID: doc.PropertyID, Name: doc.Name}, nil
}

type bookingDoc struct {
	PropertyID   string              `bson:"propertyId"`
	AmenityID    string              `bson:"amenityId"`
	ResidentName string              `bson:"residentName"`
	UnitLabel    string              `bson:"unitLabel"`
	UnitID       string              `bson:"unitId"`
	BookedDate   string              `bson:"bookedDate"`
	StartAt      string              `bson:"startAt"`
	EndAt        string              `bson:"endAt"`
	Reason       string              `bson:"reason"`
	GuestCount   int                 `bson:"guestCount"`
	Status       string              `bson:"status"`
	CreatedAt    livequery.Timestamp `bson:"createdAt"`
	CreatedBy    string              `bson:"createdBy"`
}

// Booking maps a bookings document. AmenityName is left for the caller, who
// knows the parent amenity. Missing status defaults to pending.
func Booking(d livequery.Document) (entity.Booking, error) {
	var doc bookingDoc
	if err := d.Decode(&doc); err != nil {
		return entity.Booking{}, fmt.Errorf("decode booking %s: %w", d.ID, err)
	}
	return entity.Booking{
		ID:           d.ID,
		PropertyID:   doc.PropertyID,
		AmenityID:    doc.AmenityID,
		ResidentName: doc.ResidentName,
		UnitLabel:    doc.UnitLabel,
		UnitID:       doc.UnitID,
		BookedDate:   doc.BookedDate,
		StartAt:      doc.StartAt,
		EndAt:        doc.EndAt,
		Notes:        doc.Reason,
		GuestCount:   doc.GuestCount,
		Status:       entity.BookingStatus(doc.Status).OrPending(),
		CreatedAt:    doc.CreatedAt.Ptr(),
		CreatedBy:    doc.CreatedBy,
	}, nil
}

type unitDoc struct {
	PropertyID    string `bson:"propertyId"`
	UnitLabel     string `bson:"unitLabel"`
	ResidentNames string `bson:"residentNames"`
	Active        bool   `bson:"active"`
	Notes         string `bson:"notes"`
}

// Unit maps a units document.
func Unit(d livequery.Document) (entity.Unit, error) {
	var doc unitDoc
	if err := d.Decode(&doc); err != nil {
		return entity.Unit{}, fmt.Errorf("decode unit %s: %w", d.ID, err)
	}
	return entity.Unit{
		ID:            d.ID,
		PropertyID:    doc.PropertyID,
		UnitLabel:     doc.UnitLabel,
		ResidentNames: doc.ResidentNames,
		Active:        doc.Active,
		Notes:         doc.Notes,
	}, nil
}

type eventDoc struct {
	PropertyID       string              `bson:"propertyId"`
	Title            string              `bson:"title"`
	Description      string              `bson:"description"`
	Status           string              `bson:"status"`
	StartAt          livequery.Timestamp `bson:"startAt"`
	SignUpLink       string              `bson:"signUpLink"`
	Location         string              `bson:"location"`
	ImageURL         string              `bson:"imageUrl"`
	CreatedAt        livequery.Timestamp `bson:"createdAt"`
	CreatedByStaffID string              `bson:"createdByStaffId"`
}

// Event maps an events document. Missing status defaults to upcoming.
func Event(d livequery.Document) (entity.Event, error) {
	var doc eventDoc
	if err := d.Decode(&doc); err != nil {
		return entity.Event{}, fmt.Errorf("decode event %s: %w", d.ID, err)
	}
	status := doc.Status
	if status == "" {
		status = entity.EventUpcoming
	}
	return entity.Event{
		ID:               d.ID,
		PropertyID:       doc.PropertyID,
		Title:            doc.Title,
		Description:      doc.Description,
		Status:           status,
		StartAt:          doc.StartAt.Ptr(),
		SignUpLink:       doc.SignUpLink,
		Location:         doc.Location,
		ImageURL:         doc.ImageURL,
		CreatedAt:        doc.CreatedAt.Ptr(),
		CreatedByStaffID: doc.CreatedByStaffID,
	}, nil
}

type propertyDoc struct {
	Name               string   `bson:"name"`
	LogoURL            string   `bson:"logoUrl"`
	HaveUnits          bool     `bson:"haveUnits"`
	SlideShowImageUrls []string `bson:"slideShowImageUrls"`
	StaffDepartments   []string `bson:"staffDepartments"`
}

// ReasonFields lists each reason taxonomy as (key, plural field, legacy
// singular field). An empty legacy name means the field was never renamed.
var ReasonFields = []struct {
	Key, Field, Legacy string
}{
	{"residents", "reasonsResidents", "reasonsResident"},
	{"residentGuests", "reasonsResidentGuests", "reasonsResidentGuest"},
	{"companyGuests", "reasonsCompanyGuests", "reasonsCompanyGuest"},
	{"vendors", "reasonsVendors", "reasonsVendor"},
	{"companyVendors", "reasonsCompanyVendors", "reasonsCompanyVendor"},
	{"futureResident", "reasonsFutureResident", ""},
	{"staff", "reasonsStaff", ""},
}

// Property maps a properties document. The name falls back to the id.
// Reason taxonomies prefer the plural field and fall back to the legacy
// singular one; a flat list is kept under the "General" category.
func Property(d livequery.Document) (entity.Property, error) {
	var doc propertyDoc
	if err := d.Decode(&doc); err != nil {
		return entity.Property{}, fmt.Errorf("decode property %s: %w", d.ID, err)
	}
	name := doc.Name
	if name == "" {
		name = d.ID
	}
	p := entity.Property{
		ID:               d.ID,
		Name:             name,
		LogoURL:          doc.LogoURL,
		HaveUnits:        doc.HaveUnits,
		SlideURLs:        doc.SlideShowImageUrls,
		StaffDepartments: doc.StaffDepartments,
	}
	if p.SlideURLs == nil {
		p.SlideURLs = []string{}
	}

	for _, f := range ReasonFields {
		rm, ok := reasonMap(d.Raw, f.Field)
		if !ok && f.Legacy != "" {
			rm, ok = reasonMap(d.Raw, f.Legacy)
		}
		if !ok {
			continue
		}
		if p.Reasons == nil {
			p.Reasons = make(map[string]entity.ReasonMap)
		}
		p.Reasons[f.Key] = rm
	}
	return p, nil
}

func reasonMap(raw bson.Raw, field string) (entity.ReasonMap, bool) {
	rv, err := raw.LookupErr(field)
	if err != nil {
		return nil, false
	}
	switch rv.Type {
	case bsontype.EmbeddedDocument:
		var m entity.ReasonMap
		if err := rv.Unmarshal(&m); err != nil {
			return nil, false
		}
		return m, true
	case bsontype.Array:
		var list []string
		if err := rv.Unmarshal(&list); err != nil {
			return nil, false
		}
		return entity.ReasonMap{"General": list}, true
	}
	return nil, false
}
