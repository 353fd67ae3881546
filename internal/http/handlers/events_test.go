package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/eventreg/internal/apperr"
	"github.com/geocoder89/eventreg/internal/domain/event"
	"github.com/geocoder89/eventreg/internal/domain/registration"
	"github.com/geocoder89/eventreg/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake implementation of handlers.EventsService and handlers.RegistrationService

type fakeService struct {
	createFn   func(ctx context.Context, req event.CreateEventRequest) (event.Event, error)
	listFn     func(ctx context.Context, q event.ListQuery) (event.ListResult, error)
	getFn      func(ctx context.Context, id int64) (event.Event, error)
	cancelFn   func(ctx context.Context, id int64) (event.Event, error)
	statsFn    func(ctx context.Context, id int64) (event.Stats, error)
	registerFn func(ctx context.Context, eventID int64, req registration.CreateRegistrationRequest) (registration.Registration, error)
}

func (f *fakeService) CreateEvent(ctx context.Context, req event.CreateEventRequest) (event.Event, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return event.Event{}, nil
}

func (f *fakeService) ListEvents(ctx context.Context, q event.ListQuery) (event.ListResult, error) {
	if f.listFn != nil {
		return f.listFn(ctx, q)
	}
	return event.ListResult{Items: []event.Event{}, Page: q.Page, PageSize: q.PageSize}, nil
}

func (f *fakeService) GetEvent(ctx context.Context, id int64) (event.Event, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return event.Event{}, nil
}

func (f *fakeService) CancelEvent(ctx context.Context, id int64) (event.Event, error) {
	if f.cancelFn != nil {
		return f.cancelFn(ctx, id)
	}
	return event.Event{}, nil
}

func (f *fakeService) Stats(ctx context.Context, id int64) (event.Stats, error) {
	if f.statsFn != nil {
		return f.statsFn(ctx, id)
	}
	return event.Stats{}, nil
}

func (f *fakeService) Register(ctx context.Context, eventID int64, req registration.CreateRegistrationRequest) (registration.Registration, error) {
	if f.registerFn != nil {
		return f.registerFn(ctx, eventID, req)
	}
	return registration.Registration{}, nil
}

// small helper function which returns the gin engine to mount one handler per test

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) handlers.APIError {
	t.Helper()

	var body handlers.APIError
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body: %v body=%s", err, w.Body.String())
	}
	return body
}

var notFound = apperr.NotFound("Event not found", event.ErrNotFound)

// Create Event tests

func TestCreateEventHandler(t *testing.T) {
	future := time.Now().UTC().Add(24 * time.Hour)

	tests := []struct {
		name           string
		body           string
		svcSetUp       func(*fakeService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "success",
			body: `{"name":"Conf 2025","date":"` + future.Format(time.RFC3339) + `","capacity":2}`,
			svcSetUp: func(f *fakeService) {
				f.createFn = func(ctx context.Context, req event.CreateEventRequest) (event.Event, error) {
					if req.Name != "Conf 2025" || string(req.Capacity) != "2" {
						return event.Event{}, errors.New("request not decoded")
					}
					return event.Event{ID: 1, Name: req.Name, Date: future, Capacity: 2}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "validation_error",
			body: `{"name":""}`,
			svcSetUp: func(f *fakeService) {
				f.createFn = func(ctx context.Context, req event.CreateEventRequest) (event.Event, error) {
					return event.Event{}, apperr.Validation("missing_fields", "name, date, capacity are required")
				}
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "name, date, capacity are required",
		},
		{
			name:           "malformed_json",
			body:           `{"name":`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "request body must be valid JSON",
		},
		{
			name: "empty_body_reaches_service",
			body: ``,
			svcSetUp: func(f *fakeService) {
				f.createFn = func(ctx context.Context, req event.CreateEventRequest) (event.Event, error) {
					return event.Event{}, apperr.Validation("missing_fields", "name, date, capacity are required")
				}
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "name, date, capacity are required",
		},
		{
			name: "store_error",
			body: `{"name":"Conf","date":"2030-01-01","capacity":2}`,
			svcSetUp: func(f *fakeService) {
				f.createFn = func(ctx context.Context, req event.CreateEventRequest) (event.Event, error) {
					return event.Event{}, apperr.Internal(errors.New("db error"))
				}
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			if tt.svcSetUp != nil {
				tt.svcSetUp(svc)
			}

			h := handlers.NewEventsHandler(svc)
			r := setupRouter(http.MethodPost, "/events", h.CreateEvent)

			req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			// returns a new response recorder
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantError != "" {
				if got := decodeError(t, w).Error; got != tt.wantError {
					t.Fatalf("error = %q, want %q", got, tt.wantError)
				}
			}
		})
	}
}

// ---List event tests

func TestListEventsHandlerNormalizesQuery(t *testing.T) {
	var got event.ListQuery
	svc := &fakeService{
		listFn: func(ctx context.Context, q event.ListQuery) (event.ListResult, error) {
			got = q
			return event.ListResult{Items: []event.Event{}, Total: 0, Page: q.Page, PageSize: q.PageSize}, nil
		},
	}

	h := handlers.NewEventsHandler(svc)
	r := setupRouter(http.MethodGet, "/events", h.ListEvents)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events?sort=name&order=DESC&q=conf&status=active&page=2&pageSize=500&from=nope", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if got.Sort != event.SortByName || got.Order != event.OrderDesc || got.Query != "conf" || got.Status != event.StatusActive {
		t.Fatalf("unexpected query: %+v", got)
	}
	if got.Page != 2 || got.PageSize != event.MaxPageSize || got.From != nil {
		t.Fatalf("unexpected paging/filters: %+v", got)
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(body["items"]) != "[]" {
		t.Fatalf("items = %s, want []", body["items"])
	}
	for _, key := range []string{"total", "page", "pageSize"} {
		if _, ok := body[key]; !ok {
			t.Fatalf("missing %q in %s", key, w.Body.String())
		}
	}
}

func TestListEventsHandlerETag(t *testing.T) {
	h := handlers.NewEventsHandler(&fakeService{})
	r := setupRouter(http.MethodGet, "/events", h.ListEvents)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag header")
	}

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set("If-None-Match", "W/"+etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotModified {
		t.Fatalf("got status %d, want 304", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("304 must not carry a body: %s", w.Body.String())
	}
}

// ---Get / cancel / stats tests

func TestEventByIDHandlers(t *testing.T) {
	svc := &fakeService{
		getFn: func(ctx context.Context, id int64) (event.Event, error) {
			if id != 7 {
				return event.Event{}, notFound
			}
			return event.Event{ID: 7, Name: "Conf"}, nil
		},
		cancelFn: func(ctx context.Context, id int64) (event.Event, error) {
			if id != 7 {
				return event.Event{}, notFound
			}
			return event.Event{}, apperr.Conflict("already_cancelled", "Event already cancelled", event.ErrAlreadyCancelled)
		},
		statsFn: func(ctx context.Context, id int64) (event.Stats, error) {
			if id != 7 {
				return event.Stats{}, notFound
			}
			return event.Stats{EventID: 7, Capacity: 2, TotalRegistrations: 2, IsFull: true}, nil
		},
	}
	h := handlers.NewEventsHandler(svc)

	r := gin.New()
	r.GET("/events/:id", h.GetEventByID)
	r.POST("/events/:id/cancel", h.CancelEvent)
	r.GET("/events/:id/stats", h.Stats)

	tests := []struct {
		name       string
		method     string
		url        string
		wantStatus int
		wantError  string
	}{
		{"get ok", http.MethodGet, "/events/7", http.StatusOK, ""},
		{"get missing", http.MethodGet, "/events/8", http.StatusNotFound, "Event not found"},
		{"get non-numeric id", http.MethodGet, "/events/abc", http.StatusNotFound, "Event not found"},
		{"get negative id", http.MethodGet, "/events/-1", http.StatusNotFound, "Event not found"},
		{"cancel twice", http.MethodPost, "/events/7/cancel", http.StatusBadRequest, "Event already cancelled"},
		{"cancel missing", http.MethodPost, "/events/9/cancel", http.StatusNotFound, "Event not found"},
		{"stats ok", http.MethodGet, "/events/7/stats", http.StatusOK, ""},
		{"stats missing", http.MethodGet, "/events/x/stats", http.StatusNotFound, "Event not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.url, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantError != "" {
				body := decodeError(t, w)
				if body.Error != tt.wantError {
					t.Fatalf("error = %q, want %q", body.Error, tt.wantError)
				}
				if body.Code == "" {
					t.Fatalf("missing error code")
				}
			}
		})
	}
}

// ---Register tests

type outcomeRecorder struct {
	outcomes []string
}

func (o *outcomeRecorder) ObserveRegistration(outcome string) {
	o.outcomes = append(o.outcomes, outcome)
}

func TestRegisterHandler(t *testing.T) {
	var gotID int64
	svc := &fakeService{
		registerFn: func(ctx context.Context, eventID int64, req registration.CreateRegistrationRequest) (registration.Registration, error) {
			gotID = eventID
			if req.Email == "dup@x.com" {
				return registration.Registration{}, apperr.Conflict("already_registered", "This email is already registered for the event", registration.ErrAlreadyRegistered)
			}
			return registration.Registration{ID: 1, EventID: eventID, Name: req.Name, Email: req.Email}, nil
		},
	}
	metrics := &outcomeRecorder{}
	h := handlers.NewRegistrationHandler(svc, metrics)
	r := setupRouter(http.MethodPost, "/events/:id/register", h.Register)

	post := func(url, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, url, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post("/events/42/register", `{"name":"A","email":"a@x.com"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}
	if gotID != 42 {
		t.Fatalf("event id = %d, want 42 from the URL", gotID)
	}

	var reg registration.Registration
	if err := json.Unmarshal(w.Body.Bytes(), &reg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if reg.EventID != 42 || reg.Email != "a@x.com" {
		t.Fatalf("unexpected registration: %+v", reg)
	}

	w = post("/events/42/register", `{"name":"A","email":"dup@x.com"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
	if got := decodeError(t, w); got.Error != "This email is already registered for the event" || got.Code != "already_registered" {
		t.Fatalf("unexpected error body: %+v", got)
	}

	if len(metrics.outcomes) != 2 || metrics.outcomes[0] != "ok" || metrics.outcomes[1] != "already_registered" {
		t.Fatalf("outcomes = %v", metrics.outcomes)
	}
}
