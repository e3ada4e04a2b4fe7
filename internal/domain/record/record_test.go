package record

import (
	"testing"
	"time"

	"propdesk-service/internal/domain/entity"
	"propdesk-service/internal/livequery"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func doc(t *testing.T, id string, v interface{}) livequery.Document {
	t.Helper()
	d, err := livequery.NewDocument(id, v)
	require.NoError(t, err)
	return d
}

func TestVisitNormalizesTimestamps(t *testing.T) {
	created := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	d := doc(t, "v1", bson.M{
		"fullName":    "Ada",
		"createdAt":   created,
		"signedOutAt": "not a date",
	})

	v, err := Visit(d)
	require.NoError(t, err)
	assert.Equal(t, "v1", v.ID)
	assert.Equal(t, entity.RoleGuest, v.Role)
	require.NotNil(t, v.CreatedAt)
	assert.True(t, created.Equal(*v.CreatedAt))
	assert.Nil(t, v.SignedOutAt)
}

func TestVisitAcceptsStringAndServerTimestamp(t *testing.T) {
	d := doc(t, "v2", bson.M{
		"role":        "resident",
		"createdAt":   "2024-05-01T09:30:00Z",
		"signedOutAt": bson.M{"seconds": int64(1714557600), "nanoseconds": int64(0)},
	})

	v, err := Visit(d)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleResident, v.Role)
	require.NotNil(t, v.CreatedAt)
	assert.Equal(t, 2024, v.CreatedAt.Year())
	require.NotNil(t, v.SignedOutAt)
	assert.Equal(t, int64(1714557600), v.SignedOutAt.Unix())
}

func TestBookingDefaultsStatus(t *testing.T) {
	d := doc(t, "b1", bson.M{"residentName": "Bo", "amenityId": "gym", "reason": "leg day"})

	b, err := Booking(d)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingPending, b.Status)
	assert.Equal(t, "leg day", b.Notes)
	assert.Equal(t, entity.BookingKey{AmenityID: "gym", BookingID: "b1"}, b.Key())
	assert.Nil(t, b.CreatedAt)
}

func TestEventDefaultsStatus(t *testing.T) {
	e, err := Event(doc(t, "e1", bson.M{"title": "BBQ"}))
	require.NoError(t, err)
	assert.Equal(t, entity.EventUpcoming, e.Status)
	assert.Nil(t, e.StartAt)
}

func TestPropertyReasonFallback(t *testing.T) {
	d := doc(t, "p1", bson.M{
		"haveUnits":        true,
		"reasonsResidents": bson.M{"Maintenance": bson.A{"Leak"}},
		"reasonsResident":  bson.M{"Old": bson.A{"Ignored"}},
		"reasonsVendor":    bson.M{"Delivery": bson.A{"Parcel"}},
		"reasonsStaff":     bson.A{"Shift"},
	})

	p, err := Property(d)
	require.NoError(t, err)
	assert.Equal(t, "p1", p.Name)
	assert.True(t, p.HaveUnits)
	assert.Empty(t, p.SlideURLs)
	assert.NotNil(t, p.SlideURLs)
	assert.Equal(t, entity.ReasonMap{"Maintenance": {"Leak"}}, p.Reasons["residents"])
	assert.Equal(t, entity.ReasonMap{"Delivery": {"Parcel"}}, p.Reasons["vendors"])
	assert.Equal(t, entity.ReasonMap{"General": {"Shift"}}, p.Reasons["staff"])
	_, ok := p.Reasons["companyGuests"]
	assert.False(t, ok)
}

func TestMalformedDocumentErrors(t *testing.T) {
	_, err := Unit(doc(t, "u1", bson.M{"active": "yes"}))
	assert.Error(t, err)
}
