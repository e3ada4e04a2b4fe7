package usecase

import (
	"context"
	"testing"
	"time"

	"propdesk-service/internal/domain/entity"
	"propdesk-service/pkg/logger"
	"propdesk-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBooking() entity.NewBooking {
	return entity.NewBooking{
		ResidentName:    "  Ada Lovelace ",
		UnitLabel:       "12B",
		AmenityID:       "gym",
		BookedDate:      "2024-06-01",
		StartAt:         "23:30",
		DurationMinutes: 90,
		Notes:           "bring towels",
	}
}

func newBookingService() (*BookingService, *fakeBookings, *metrics.Metrics) {
	repo := &fakeBookings{status: map[entity.BookingKey]entity.BookingStatus{}}
	amenities := &fakeAmenities{byID: map[string]entity.Amenity{
		"gym": {ID: "gym", PropertyID: "p1", Name: "Gym"},
	}}
	m := metrics.NewNopMetrics()
	return NewBookingService(repo, amenities, m, logger.NewNop()), repo, m
}

func TestBookingCreate(t *testing.T) {
	svc, repo, m := newBookingService()

	b, err := svc.Create(context.Background(), "p1", "admin-1", validBooking())
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "Ada Lovelace", b.ResidentName)
	assert.Equal(t, "Gym", b.AmenityName)
	assert.Equal(t, "01:00", b.EndAt)
	assert.Equal(t, entity.BookingPending, b.Status)
	assert.Equal(t, "bring towels", b.Notes)
	assert.Equal(t, "admin-1", b.CreatedBy)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Writes.WithLabelValues(OpCreateBooking)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.WriteErrors.WithLabelValues(OpCreateBooking)))
}

func TestBookingCreateValidation(t *testing.T) {
	svc, repo, m := newBookingService()

	cases := map[string]func(*entity.NewBooking){
		"missing name":    func(b *entity.NewBooking) { b.ResidentName = "   " },
		"missing unit":    func(b *entity.NewBooking) { b.UnitLabel = "" },
		"bad date":        func(b *entity.NewBooking) { b.BookedDate = "06/01/2024" },
		"bad start":       func(b *entity.NewBooking) { b.StartAt = "noon" },
		"zero duration":   func(b *entity.NewBooking) { b.DurationMinutes = 0 },
		"missing amenity": func(b *entity.NewBooking) { b.AmenityID = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validBooking()
			mutate(&in)
			_, err := svc.Create(context.Background(), "p1", "admin-1", in)
			assert.ErrorIs(t, err, entity.ErrValidation)
		})
	}
	assert.Empty(t, repo.created)
	assert.Equal(t, float64(len(cases)), testutil.ToFloat64(m.WriteErrors.WithLabelValues(OpCreateBooking)))
}

func TestBookingCreateScopeAndAmenity(t *testing.T) {
	svc, _, _ := newBookingService()

	_, err := svc.Create(context.Background(), "", "admin-1", validBooking())
	assert.ErrorIs(t, err, entity.ErrNoPropertyScope)

	_, err = svc.Create(context.Background(), "p2", "admin-1", validBooking())
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestBookingSetStatus(t *testing.T) {
	svc, repo, _ := newBookingService()
	key := entity.BookingKey{AmenityID: "gym", BookingID: "b1"}
	repo.status[key] = entity.BookingPending

	require.NoError(t, svc.SetStatus(context.Background(), "p1", key, entity.BookingApproved))
	assert.Equal(t, entity.BookingApproved, repo.status[key])

	err := svc.SetStatus(context.Background(), "p1", key, "maybe")
	assert.ErrorIs(t, err, entity.ErrValidation)

	err = svc.SetStatus(context.Background(), "p1", entity.BookingKey{AmenityID: "pool", BookingID: "b1"}, entity.BookingRejected)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestUnitService(t *testing.T) {
	repo := &fakeUnits{units: map[string]*entity.Unit{}}
	svc := NewUnitService(repo, metrics.NewNopMetrics(), logger.NewNop())
	ctx := context.Background()

	_, err := svc.Create(ctx, "p1", entity.UnitInput{UnitLabel: "  "})
	assert.ErrorIs(t, err, entity.ErrValidation)

	u, err := svc.Create(ctx, "p1", entity.UnitInput{UnitLabel: " 101 ", ResidentNames: " Ann, Bo "})
	require.NoError(t, err)
	assert.Equal(t, "101", u.UnitLabel)
	assert.Equal(t, "Ann, Bo", u.ResidentNames)
	assert.True(t, u.Active)

	updated, err := svc.Update(ctx, "p1", u.ID, entity.UnitInput{UnitLabel: "101A", Notes: "corner"})
	require.NoError(t, err)
	assert.Equal(t, "101A", repo.units[u.ID].UnitLabel)
	assert.True(t, repo.units[u.ID].Active)
	assert.True(t, updated.Active, "update reports the stored active flag")
	assert.Equal(t, "corner", updated.Notes)

	active, err := svc.Toggle(ctx, "p1", u.ID)
	require.NoError(t, err)
	assert.False(t, active)

	_, err = svc.Toggle(ctx, "p1", "nope")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func newSlideService(max int) (*SlideService, *fakeProperties, *fakeBlobs) {
	props := newFakeProperties()
	blobs := newFakeBlobs()
	svc := NewSlideService(props, blobs, max, metrics.NewNopMetrics(), logger.NewNop())
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc, props, blobs
}

func TestSlideUploadTruncatesToCap(t *testing.T) {
	svc, props, blobs := newSlideService(3)
	props.slides["p1"] = []string{"http://media.test/media/old.png"}

	res, err := svc.Upload(context.Background(), "p1", []Upload{
		upload("a.PNG", "a"), upload("b.jpg", "b"), upload("c.gif", "c"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Added, 2)
	assert.Contains(t, res.Added[0], "properties/p1/slideshows/1700000000000_")
	assert.Contains(t, res.Added[0], ".png")
	assert.Contains(t, res.Added[1], ".jpg")
	assert.Len(t, props.slides["p1"], 3)
	assert.Len(t, blobs.objects, 2)

	_, err = svc.Upload(context.Background(), "p1", []Upload{upload("d.png", "d")})
	assert.ErrorIs(t, err, entity.ErrSlideLimit)
}

func TestSlideUploadFailureStoresNothing(t *testing.T) {
	svc, props, blobs := newSlideService(15)
	blobs.fail = ".gif"

	_, err := svc.Upload(context.Background(), "p1", []Upload{upload("a.png", "a"), upload("b.gif", "b")})
	assert.Error(t, err)
	assert.Empty(t, props.slides["p1"])
	assert.Empty(t, blobs.objects, "uploaded images are removed again")
}

func TestSlideUploadLosesRaceToConcurrentUpload(t *testing.T) {
	svc, props, blobs := newSlideService(3)
	props.slides["p1"] = []string{"http://media.test/media/old.png"}
	props.beforeAdd = func() {
		props.mu.Lock()
		defer props.mu.Unlock()
		props.slides["p1"] = append(props.slides["p1"], "http://media.test/media/other.png")
	}

	_, err := svc.Upload(context.Background(), "p1", []Upload{upload("a.png", "a"), upload("b.png", "b")})
	assert.ErrorIs(t, err, entity.ErrSlideLimit)
	assert.Len(t, props.slides["p1"], 2)
	assert.Empty(t, blobs.objects)
	assert.Len(t, blobs.deleted, 2)
}

func TestSlideDelete(t *testing.T) {
	svc, props, blobs := newSlideService(15)
	res, err := svc.Upload(context.Background(), "p1", []Upload{upload("a.png", "a")})
	require.NoError(t, err)
	url := res.Added[0]

	require.NoError(t, svc.Delete(context.Background(), "p1", url))
	assert.Empty(t, props.slides["p1"])
	assert.Equal(t, []string{url}, blobs.deleted)

	props.slides["p1"] = []string{"http://media.test/media/gone.png"}
	require.NoError(t, svc.Delete(context.Background(), "p1", "http://media.test/media/gone.png"))
	assert.Empty(t, props.slides["p1"])

	assert.ErrorIs(t, svc.Delete(context.Background(), "p1", ""), entity.ErrValidation)
}

func TestEventLifecycle(t *testing.T) {
	repo := &fakeEvents{events: map[string]*entity.Event{}}
	blobs := newFakeBlobs()
	svc := NewEventService(repo, blobs, metrics.NewNopMetrics(), logger.NewNop())
	ctx := context.Background()
	start := time.Date(2024, 7, 4, 18, 0, 0, 0, time.UTC)

	_, err := svc.Create(ctx, "p1", "staff-1", entity.EventInput{StartAt: start}, nil)
	assert.ErrorIs(t, err, entity.ErrValidation)

	_, err = svc.Create(ctx, "p1", "staff-1", entity.EventInput{Title: "BBQ", StartAt: start, SignUpLink: "not a url"}, nil)
	assert.ErrorIs(t, err, entity.ErrValidation)

	img := upload("party pic.png", "img")
	e, err := svc.Create(ctx, "p1", "staff-1", entity.EventInput{Title: " BBQ ", StartAt: start}, &img)
	require.NoError(t, err)
	assert.Equal(t, "BBQ", e.Title)
	assert.Equal(t, entity.EventUpcoming, e.Status)
	assert.Contains(t, e.ImageURL, "properties/p1/events/")
	assert.Contains(t, e.ImageURL, "party_pic.png")
	firstImage := e.ImageURL

	img2 := upload("new.png", "img2")
	updated, err := svc.Update(ctx, "p1", e.ID, entity.EventInput{Title: "BBQ", Status: entity.EventCancelled, StartAt: start}, &img2)
	require.NoError(t, err)
	assert.Equal(t, entity.EventCancelled, updated.Status)
	assert.NotEqual(t, firstImage, updated.ImageURL)
	assert.Equal(t, []string{firstImage}, blobs.deleted)

	require.NoError(t, svc.Delete(ctx, "p1", e.ID))
	assert.Empty(t, repo.events)
	assert.Equal(t, []string{firstImage, updated.ImageURL}, blobs.deleted)

	assert.ErrorIs(t, svc.Delete(ctx, "p1", e.ID), entity.ErrNotFound)
}

func TestAdminProfileDefaults(t *testing.T) {
	admins := &fakeAdmins{profiles: map[string]*entity.AdminProfile{
		"u1": {UID: "u1", Name: "Root", Role: entity.AdminRoleGod, AdminOf: []string{"p1"}},
	}}
	svc := NewAdminService(admins, newFakeProperties(), &mapCache{data: map[string][]byte{}}, time.Minute, logger.NewNop())

	p, err := svc.Profile(context.Background(), "u1", "root@example.com")
	require.NoError(t, err)
	assert.True(t, p.CanManageContent())
	assert.Equal(t, "root@example.com", p.Email)

	p, err = svc.Profile(context.Background(), "stranger", "s@example.com")
	require.NoError(t, err)
	assert.Equal(t, entity.AdminRoleConcierge, p.Role)
	assert.False(t, p.CanManageContent())
	assert.Empty(t, p.AdminOf)
}

func TestAdminPropertiesSortedAndCached(t *testing.T) {
	props := newFakeProperties()
	props.summaries = map[string]string{"p1": "zephyr", "p2": "Alder", "p3": ""}
	cache := &mapCache{data: map[string][]byte{}}
	svc := NewAdminService(&fakeAdmins{profiles: map[string]*entity.AdminProfile{}}, props, cache, time.Minute, logger.NewNop())
	profile := &entity.AdminProfile{UID: "u1", AdminOf: []string{"p1", "p2", "p3"}}

	list, err := svc.Properties(context.Background(), profile)
	require.NoError(t, err)
	assert.Equal(t, []entity.PropertySummary{
		{ID: "p2", Name: "Alder"},
		{ID: "p3", Name: "p3"},
		{ID: "p1", Name: "zephyr"},
	}, list)

	again, err := svc.Properties(context.Background(), profile)
	require.NoError(t, err)
	assert.Equal(t, list, again)
	assert.Equal(t, 1, props.lookups)

	empty, err := svc.Properties(context.Background(), &entity.AdminProfile{UID: "u2"})
	require.NoError(t, err)
	assert.Empty(t, empty)
}
