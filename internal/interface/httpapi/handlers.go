package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"propdesk-service/internal/domain/entity"
	"propdesk-service/internal/domain/repository"
	"propdesk-service/internal/interface/ws"
	"propdesk-service/internal/usecase"
	"propdesk-service/pkg/logger"

	"github.com/go-chi/chi/v5"
)

const jsonBodyLimit = 1 << 20

// AdminDirectory resolves admin profiles and their properties.
type AdminDirectory interface {
	Profile(ctx context.Context, uid, email string) (*entity.AdminProfile, error)
	Properties(ctx context.Context, p *entity.AdminProfile) ([]entity.PropertySummary, error)
}

// BookingWriter handles booking writes.
type BookingWriter interface {
	Create(ctx context.Context, propertyID, createdBy string, in entity.NewBooking) (*entity.Booking, error)
	SetStatus(ctx context.Context, propertyID string, key entity.BookingKey, status entity.BookingStatus) error
}

// UnitWriter handles unit writes.
type UnitWriter interface {
	Create(ctx context.Context, propertyID string, in entity.UnitInput) (*entity.Unit, error)
	Update(ctx context.Context, propertyID, unitID string, in entity.UnitInput) (*entity.Unit, error)
	Toggle(ctx context.Context, propertyID, unitID string) (bool, error)
}

// SlideWriter handles slideshow writes.
type SlideWriter interface {
	Upload(ctx context.Context, propertyID string, files []usecase.Upload) (*usecase.SlideUploadResult, error)
	Delete(ctx context.Context, propertyID, url string) error
}

// EventWriter handles event writes.
type EventWriter interface {
	Create(ctx context.Context, propertyID, staffID string, in entity.EventInput, img *usecase.Upload) (*entity.Event, error)
	Update(ctx context.Context, propertyID, eventID string, in entity.EventInput, img *usecase.Upload) (*entity.Event, error)
	Delete(ctx context.Context, propertyID, eventID string) error
}

// FeedServer streams a live feed over an upgraded connection.
type FeedServer interface {
	Serve(w http.ResponseWriter, r *http.Request, propertyID, feedName string) error
}

// SignIn drives the browser sign-in flow.
type SignIn interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
}

// Handler holds the API dependencies
type Handler struct {
	signIn         SignIn
	admins         AdminDirectory
	bookings       BookingWriter
	units          UnitWriter
	slides         SlideWriter
	events         EventWriter
	blobs          repository.BlobStore
	streams        FeedServer
	logger         logger.Logger
	maxUploadBytes int64
}

type meResponse struct {
	*entity.AdminProfile
	CanManageContent bool                     `json:"canManageContent"`
	Properties       []entity.PropertySummary `json:"properties"`
}

// Me returns the signed-in admin with their property list.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p := profileFrom(r.Context())
	props, err := h.admins.Properties(r.Context(), p)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, meResponse{
		AdminProfile:     p,
		CanManageContent: p.CanManageContent(),
		Properties:       props,
	})
}

// Properties lists the admin's properties by name.
func (h *Handler) Properties(w http.ResponseWriter, r *http.Request) {
	props, err := h.admins.Properties(r.Context(), profileFrom(r.Context()))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, props)
}

// CreateBooking books an amenity for a resident.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var in entity.NewBooking
	if !decodeJSON(w, r, jsonBodyLimit, &in) {
		return
	}
	b, err := h.bookings.Create(r.Context(), chi.URLParam(r, "pid"), profileFrom(r.Context()).UID, in)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, b)
}

type statusRequest struct {
	Status entity.BookingStatus `json:"status"`
}

// SetBookingStatus approves or rejects a booking.
func (h *Handler) SetBookingStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(w, r, jsonBodyLimit, &req) {
		return
	}
	key := entity.BookingKey{AmenityID: chi.URLParam(r, "aid"), BookingID: chi.URLParam(r, "bid")}
	if err := h.bookings.SetStatus(r.Context(), chi.URLParam(r, "pid"), key, req.Status); err != nil {
		handleError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}

// CreateUnit adds a unit.
func (h *Handler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	var in entity.UnitInput
	if !decodeJSON(w, r, jsonBodyLimit, &in) {
		return
	}
	u, err := h.units.Create(r.Context(), chi.URLParam(r, "pid"), in)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, u)
}

// UpdateUnit edits a unit.
func (h *Handler) UpdateUnit(w http.ResponseWriter, r *http.Request) {
	var in entity.UnitInput
	if !decodeJSON(w, r, jsonBodyLimit, &in) {
		return
	}
	u, err := h.units.Update(r.Context(), chi.URLParam(r, "pid"), chi.URLParam(r, "uid"), in)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

// ToggleUnit flips a unit's active flag.
func (h *Handler) ToggleUnit(w http.ResponseWriter, r *http.Request) {
	active, err := h.units.Toggle(r.Context(), chi.URLParam(r, "pid"), chi.URLParam(r, "uid"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"active": active})
}

func toUpload(fh *multipart.FileHeader) usecase.Upload {
	return usecase.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "Upload too large")
		} else {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidPayload, "Invalid multipart form")
		}
		return false
	}
	return true
}

// UploadSlides stores slideshow images sent as multipart "files".
func (h *Handler) UploadSlides(w http.ResponseWriter, r *http.Request) {
	if !h.parseMultipart(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	files := make([]usecase.Upload, 0, len(headers))
	for _, fh := range headers {
		files = append(files, toUpload(fh))
	}

	res, err := h.slides.Upload(r.Context(), chi.URLParam(r, "pid"), files)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

// DeleteSlide removes the slide given by the url query parameter.
func (h *Handler) DeleteSlide(w http.ResponseWriter, r *http.Request) {
	if err := h.slides.Delete(r.Context(), chi.URLParam(r, "pid"), r.URL.Query().Get("url")); err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// readEvent accepts either a JSON body or a multipart form with the event
// JSON in "event" and an optional "image" file.
func (h *Handler) readEvent(w http.ResponseWriter, r *http.Request) (entity.EventInput, *usecase.Upload, bool) {
	var in entity.EventInput
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return in, nil, decodeJSON(w, r, jsonBodyLimit, &in)
	}

	if !h.parseMultipart(w, r) {
		return in, nil, false
	}
	if err := json.Unmarshal([]byte(r.FormValue("event")), &in); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidPayload, "Invalid event field")
		return in, nil, false
	}
	if files := r.MultipartForm.File["image"]; len(files) > 0 {
		img := toUpload(files[0])
		return in, &img, true
	}
	return in, nil, true
}

// CreateEvent adds an event.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	in, img, ok := h.readEvent(w, r)
	if !ok {
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	e, err := h.events.Create(r.Context(), chi.URLParam(r, "pid"), profileFrom(r.Context()).UID, in, img)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, e)
}

// UpdateEvent edits an event.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	in, img, ok := h.readEvent(w, r)
	if !ok {
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	e, err := h.events.Update(r.Context(), chi.URLParam(r, "pid"), chi.URLParam(r, "eid"), in, img)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

// DeleteEvent removes an event and its image.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.events.Delete(r.Context(), chi.URLParam(r, "pid"), chi.URLParam(r, "eid")); err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stream upgrades to a live feed. The server's read and write timeouts
// would otherwise carry over onto the upgraded connection.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	err := h.streams.Serve(w, r, chi.URLParam(r, "pid"), chi.URLParam(r, "feed"))
	if errors.Is(err, ws.ErrUnknownFeed) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, fmt.Sprintf("Unknown feed %q", chi.URLParam(r, "feed")))
	}
}

// Media serves a stored blob.
func (h *Handler) Media(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	blob, err := h.blobs.Open(r.Context(), path)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	defer blob.Close()

	w.Header().Set("Content-Type", blob.ContentType)
	if blob.Size > 0 {
		w.Header().Set("Content-Length", fmt.Sprint(blob.Size))
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, blob); err != nil {
		h.logger.Debug("Media copy aborted", "path", path, "error", err)
	}
}

const stateCookie = "propdesk_oauth_state"

// Login redirects to the Google consent screen.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	state := newState()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	http.Redirect(w, r, h.signIn.AuthURL(state), http.StatusFound)
}

// Callback exchanges the authorization code for an ID token.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" || c.Value != r.URL.Query().Get("state") {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidPayload, "Invalid state parameter")
		return
	}
	idToken, err := h.signIn.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		handleError(w, h.logger, &AppError{http.StatusUnauthorized, ErrCodeUnauthorized, "Sign-in failed", err})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"idToken": idToken})
}
