package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sm8ta/webike_workshop_service/internal/adapter/auth"
	"github.com/sm8ta/webike_workshop_service/internal/adapter/logger"
	"github.com/sm8ta/webike_workshop_service/internal/adapter/memory"
	metrics "github.com/sm8ta/webike_workshop_service/internal/adapter/prometheus"
	"github.com/sm8ta/webike_workshop_service/internal/config"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
	"github.com/sm8ta/webike_workshop_service/internal/core/services"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	engine   *gin.Engine
	tokens   *JWTTokenService
	profiles *services.ProfileService
	admin    *domain.Profile
	mechanic *domain.Profile
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewNopLogger()
	validate := validator.New()
	store := memory.NewStore()
	cache := memory.NewCache()
	feed := memory.NewFeed(16)
	m := metrics.NewPrometheusAdapterWithRegisterer(prometheus.NewRegistry())
	tokens := NewJWTTokenService("test-secret", time.Hour, log)

	workflow := services.NewWorkflowService(store, log, validate, cache, feed, m)
	bikes := services.NewBikeService(store, log, validate, cache, feed)
	inventory := services.NewInventoryService(store, log, validate, cache, feed, time.Hour)
	tasks := services.NewTaskService(store, log, validate, cache, feed)
	availability := services.NewAvailabilityService(store, log, validate)
	profiles := services.NewProfileService(store, log, validate, auth.NewBcryptHasher(bcrypt.MinCost), tokens)
	reports := services.NewReportService(store, log)
	settings := services.NewSettingsService(log, cache, feed)

	router, err := NewRouter(&config.HTTP{Env: "test", AllowedOrigins: "http://localhost"}, tokens, Handlers{
		Bike:         NewBikeHandler(bikes, workflow, log, m),
		Workflow:     NewWorkflowHandler(workflow, log, m),
		Inventory:    NewInventoryHandler(inventory, log, m),
		Task:         NewTaskHandler(tasks, log, m),
		Availability: NewAvailabilityHandler(availability, log, m),
		Profile:      NewProfileHandler(profiles, log, m),
		Report:       NewReportHandler(reports, log, m),
		Settings:     NewSettingsHandler(settings, log, m),
		Events:       NewEventsHandler(feed, log, m),
	})
	if err != nil {
		t.Fatalf("new router: %v", err)
	}

	s := &testServer{engine: router.Engine(), tokens: tokens, profiles: profiles}
	s.admin = s.createProfile(t, "Anna Admin", "admin@example.com", domain.Admin)
	s.mechanic = s.createProfile(t, "Mo Monteur", "mo@example.com", domain.Mechanic)
	return s
}

func (s *testServer) createProfile(t *testing.T, name, email string, role domain.UserRole) *domain.Profile {
	t.Helper()
	p, err := s.profiles.CreateProfile(context.Background(), &domain.NewProfile{
		FullName: name,
		Email:    email,
		Role:     role,
		Password: "werkplaats1",
	})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return p
}

func (s *testServer) token(t *testing.T, p *domain.Profile) string {
	t.Helper()
	token, err := s.tokens.CreateToken(p)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	tokens := NewJWTTokenService("secret", time.Minute, logger.NewNopLogger())
	profile := &domain.Profile{ID: uuid.New(), Role: domain.Foh}

	token, err := tokens.CreateToken(profile)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	payload, err := tokens.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if payload.UserID != profile.ID || payload.Role != domain.Foh {
		t.Fatalf("payload = %+v, want user %s role foh", payload, profile.ID)
	}

	other := NewJWTTokenService("other", time.Minute, logger.NewNopLogger())
	if _, err := other.VerifyToken(token); err == nil {
		t.Fatal("token signed with another secret was accepted")
	}

	expired := NewJWTTokenService("secret", -time.Minute, logger.NewNopLogger())
	old, err := expired.CreateToken(profile)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	if _, err := tokens.VerifyToken(old); err == nil {
		t.Fatal("expired token was accepted")
	}
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t)
	if rec := s.do(t, http.MethodGet, "/health", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("health = %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	if rec := s.do(t, http.MethodGet, "/bikes", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token = %d, want 401", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/bikes", "garbage", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/bikes", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("basic auth = %d, want 401", rec.Code)
	}

	token := s.token(t, s.mechanic)
	if rec := s.do(t, http.MethodGet, "/bikes?token="+token, "", nil); rec.Code != http.StatusOK {
		t.Fatalf("query token = %d, want 200", rec.Code)
	}
}

func TestAdminRoutesRejectOtherRoles(t *testing.T) {
	s := newTestServer(t)
	mech := s.token(t, s.mechanic)
	admin := s.token(t, s.admin)

	if rec := s.do(t, http.MethodGet, "/reports/points?from=2026-01-01&to=2026-01-31", mech, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("mechanic on reports = %d, want 403", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/reports/points?from=2026-01-01&to=2026-01-31", admin, nil); rec.Code != http.StatusOK {
		t.Fatalf("admin on reports = %d, want 200", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/reports/points?from=2026-01-31&to=2026-01-01", admin, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("reversed range = %d, want 400", rec.Code)
	}

	product := domain.Product{Name: "Ketting vervangen", Quantity: 3}
	if rec := s.do(t, http.MethodPost, "/products", mech, product); rec.Code != http.StatusForbidden {
		t.Fatalf("mechanic creating product = %d, want 403", rec.Code)
	}
	if rec := s.do(t, http.MethodPost, "/products", admin, product); rec.Code != http.StatusCreated {
		t.Fatalf("admin creating product = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "MO@example.com", Password: "werkplaats1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d: %s", rec.Code, rec.Body.String())
	}
	var resp LoginResponse
	decode(t, rec, &resp)
	if resp.Profile == nil || resp.Profile.ID != s.mechanic.ID {
		t.Fatalf("login profile = %+v", resp.Profile)
	}

	me := s.do(t, http.MethodGet, "/profiles/me", resp.Token, nil)
	if me.Code != http.StatusOK {
		t.Fatalf("me = %d", me.Code)
	}

	rec = s.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "mo@example.com", Password: "fout"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password = %d, want 401", rec.Code)
	}
}

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad", domain.ErrValidation), http.StatusBadRequest},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrInactiveProfile, http.StatusForbidden},
		{fmt.Errorf("bike: %w", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrConflict, http.StatusConflict},
		{domain.ErrRegistrationCompleted, http.StatusConflict},
		{domain.ErrTaskCompleted, http.StatusConflict},
		{domain.ErrInvalidTransition, http.StatusUnprocessableEntity},
		{domain.ErrChecklistIncomplete, http.StatusUnprocessableEntity},
		{domain.ErrApprovalPending, http.StatusUnprocessableEntity},
		{domain.ErrTaskRejected, http.StatusUnprocessableEntity},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := errorStatus(tc.err); got != tc.want {
			t.Errorf("errorStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestIntakeAndWorkflowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, s.mechanic)

	rec := s.do(t, http.MethodPost, "/bikes", token, domain.BikeIntake{FrameNumber: "WB-1001", Model: domain.ModelS3})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register = %d: %s", rec.Code, rec.Body.String())
	}
	var bike domain.Bike
	decode(t, rec, &bike)
	if bike.WorkflowStatus != domain.StatusDiagnoseNodig {
		t.Fatalf("status = %s, want diagnose_nodig", bike.WorkflowStatus)
	}

	dup := s.do(t, http.MethodPost, "/bikes", token, domain.BikeIntake{FrameNumber: "WB-1001", Model: domain.ModelS3})
	if dup.Code != http.StatusConflict {
		t.Fatalf("duplicate frame = %d, want 409", dup.Code)
	}

	path := "/bikes/" + bike.ID.String()
	rec = s.do(t, http.MethodPost, path+"/events", token, FireEventRequest{Event: domain.EventStartDiagnosis})
	if rec.Code != http.StatusOK {
		t.Fatalf("start diagnosis = %d: %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, path+"/events", token, FireEventRequest{Event: domain.EventFinish})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("finish from diagnose_bezig = %d, want 422", rec.Code)
	}

	rec = s.do(t, http.MethodGet, path, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get bike = %d", rec.Code)
	}
	var detail domain.BikeDetail
	decode(t, rec, &detail)
	if detail.Bike.WorkflowStatus != domain.StatusDiagnoseBezig || len(detail.AvailableEvents) == 0 {
		t.Fatalf("detail = %+v", detail)
	}

	if rec := s.do(t, http.MethodGet, "/bikes/"+uuid.NewString(), token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown bike = %d, want 404", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/bikes/not-a-uuid", token, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id = %d, want 400", rec.Code)
	}
}

func TestScheduleEditAccepted(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, s.admin)

	rec := s.do(t, http.MethodPost, "/products", admin, domain.Product{Name: "Remblokken", Quantity: 4})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product = %d: %s", rec.Code, rec.Body.String())
	}
	var created ProductResponse
	decode(t, rec, &created)

	path := "/inventory/" + created.Item.ID.String() + "/fields"
	if rec := s.do(t, http.MethodPatch, path, admin, FieldEditRequest{Field: domain.FieldQuantity, Value: "9"}); rec.Code != http.StatusAccepted {
		t.Fatalf("schedule edit = %d: %s", rec.Code, rec.Body.String())
	}
	if rec := s.do(t, http.MethodPatch, path, admin, FieldEditRequest{Field: domain.FieldQuantity, Value: "negen"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad edit = %d, want 400", rec.Code)
	}
}

func TestAssignMechanicRequiresAdminOrFoh(t *testing.T) {
	s := newTestServer(t)
	mech := s.token(t, s.mechanic)
	foh := s.token(t, s.createProfile(t, "Fien Balie", "fien@example.com", domain.Foh))

	rec := s.do(t, http.MethodPost, "/bikes", mech, domain.BikeIntake{FrameNumber: "WB-1101", Model: domain.ModelS3})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register = %d: %s", rec.Code, rec.Body.String())
	}
	var bike domain.Bike
	decode(t, rec, &bike)
	path := "/bikes/" + bike.ID.String() + "/table"
	table := "T3"

	req := AssignTableRequest{TableNumber: &table, MechanicID: &s.mechanic.ID}
	if rec := s.do(t, http.MethodPut, path, mech, req); rec.Code != http.StatusForbidden {
		t.Fatalf("mechanic assigning mechanic = %d, want 403", rec.Code)
	}
	if rec := s.do(t, http.MethodPut, path, mech, AssignTableRequest{TableNumber: &table}); rec.Code != http.StatusOK {
		t.Fatalf("mechanic setting table = %d: %s", rec.Code, rec.Body.String())
	}
	rec = s.do(t, http.MethodPut, path, foh, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("foh assigning mechanic = %d: %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &bike)
	if bike.CurrentMechanicID == nil || *bike.CurrentMechanicID != s.mechanic.ID {
		t.Fatalf("mechanic = %v, want %s", bike.CurrentMechanicID, s.mechanic.ID)
	}
}

func TestEventsRejectsUnknownType(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, s.mechanic)

	rec := s.do(t, http.MethodGet, "/events?tables=bikes&events=DELETE,TRUNCATE", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown event type = %d, want 400", rec.Code)
	}
}
