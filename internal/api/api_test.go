package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/opencorrections/warden/internal/activity"
	"github.com/opencorrections/warden/internal/alert"
	"github.com/opencorrections/warden/internal/auth"
	"github.com/opencorrections/warden/internal/bus"
	"github.com/opencorrections/warden/internal/cache"
	"github.com/opencorrections/warden/internal/domain"
	"github.com/opencorrections/warden/internal/govcheck"
	"github.com/opencorrections/warden/internal/metrics"
	"github.com/opencorrections/warden/internal/repository"
)

// testServer bundles the full community-tier stack for handler tests.
type testServer struct {
	server   *Server
	registry *govcheck.MockRegistry
}

func createTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "warden-api-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpPath) })

	repo, err := repository.New(domain.RepositoryConfig{
		Driver:     "sqlite",
		SQLitePath: tmpPath,
	})
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	cacheImpl := cache.NewLRUCache(1000)
	t.Cleanup(func() { cacheImpl.Close() })

	eventBus := bus.NewChannelBus(100)
	t.Cleanup(func() { eventBus.Close() })

	activitySvc := activity.NewService(repo, cacheImpl)

	engine, err := alert.NewEngine(activitySvc.GetActivityGetter(), 5)
	if err != nil {
		t.Fatalf("failed to create alert engine: %v", err)
	}
	t.Cleanup(func() { engine.Close() })

	registry := govcheck.NewMockRegistry(0)
	validator := govcheck.NewService(registry, cacheImpl, time.Minute)

	jwtService := auth.NewJWTService("test-signing-key-0123456789", "warden-test", "warden-api", time.Hour)

	server := NewServer(
		domain.ServerConfig{Host: "localhost", Port: 8080, ReadTimeout: 30, WriteTimeout: 30},
		repo, cacheImpl, eventBus, engine, validator, activitySvc, jwtService, metrics.New(),
		domain.WindowConfig{IncidentWindow: 50, RatingWindow: 10, ReferenceTTL: 300},
		"test-v1",
	)

	return &testServer{server: server, registry: registry}
}

// do executes a request against the in-memory router.
func (ts *testServer) do(method, path, facilityID, token string, payload any) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if facilityID != "" {
		req.Header.Set(FacilityIDHeader, facilityID)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.server.Router().ServeHTTP(rr, req)
	return rr
}

// login registers a user with the given role and returns a bearer token.
func (ts *testServer) login(t *testing.T, facilityID, username, role string) string {
	t.Helper()

	creds := map[string]string{"username": username, "password": "test-password", "role": role}

	if rr := ts.do(http.MethodPost, "/auth/register", facilityID, "", creds); rr.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rr.Code, rr.Body.String())
	}

	rr := ts.do(http.MethodPost, "/auth/login", facilityID, "", creds)
	if rr.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rr.Code, rr.Body.String())
	}

	var resp TokenResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse token response: %v", err)
	}
	if resp.AccessToken == "" || resp.TokenType != "Bearer" {
		t.Fatalf("unexpected token response: %+v", resp)
	}
	return resp.AccessToken
}

// admit creates a prisoner and returns its ID.
func (ts *testServer) admit(t *testing.T, facilityID, token, inmateNumber string) string {
	t.Helper()

	rr := ts.do(http.MethodPost, "/prisoners", facilityID, token, map[string]string{
		"inmateNumber": inmateNumber,
		"firstName":    "John",
		"lastName":     "Smith",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("admission failed: %d %s", rr.Code, rr.Body.String())
	}

	var prisoner domain.Prisoner
	if err := json.Unmarshal(rr.Body.Bytes(), &prisoner); err != nil {
		t.Fatalf("failed to parse prisoner: %v", err)
	}
	if prisoner.ID == "" {
		t.Fatal("expected prisoner ID")
	}
	return prisoner.ID
}

func TestHealthAndReady(t *testing.T) {
	ts := createTestServer(t)

	rr := ts.do(http.MethodGet, "/health", "", "", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 from /health, got %d", rr.Code)
	}

	rr = ts.do(http.MethodGet, "/ready", "", "", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 from /ready, got %d", rr.Code)
	}
}

func TestFacilityHeaderRequired(t *testing.T) {
	ts := createTestServer(t)

	rr := ts.do(http.MethodGet, "/prisoners", "", "", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without facility header, got %d", rr.Code)
	}
}

func TestAuthFlow(t *testing.T) {
	ts := createTestServer(t)
	facilityID := "facility-001"

	t.Run("RegisterAndLogin", func(t *testing.T) {
		token := ts.login(t, facilityID, "warden-1", domain.RoleWarden)
		if token == "" {
			t.Fatal("expected token")
		}
	})

	t.Run("WrongPassword", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/auth/login", facilityID, "", map[string]string{
			"username": "warden-1",
			"password": "wrong",
		})
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 for wrong password, got %d", rr.Code)
		}
	})

	t.Run("WrongFacility", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/auth/login", "facility-other", "", map[string]string{
			"username": "warden-1",
			"password": "test-password",
		})
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 for wrong facility, got %d", rr.Code)
		}
	})

	t.Run("InvalidRole", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/auth/register", facilityID, "", map[string]string{
			"username": "someone",
			"password": "test-password",
			"role":     "overlord",
		})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for invalid role, got %d", rr.Code)
		}
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/auth/register", facilityID, "", map[string]string{
			"username": "warden-1",
			"password": "test-password",
			"role":     domain.RoleWarden,
		})
		if rr.Code != http.StatusConflict {
			t.Errorf("expected 409 for duplicate username, got %d", rr.Code)
		}
	})

	t.Run("Me", func(t *testing.T) {
		token := ts.login(t, facilityID, "clerk-1", domain.RoleClerk)
		rr := ts.do(http.MethodGet, "/auth/me", facilityID, token, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var user domain.User
		json.Unmarshal(rr.Body.Bytes(), &user)
		if user.Username != "clerk-1" || user.Role != domain.RoleClerk {
			t.Errorf("unexpected account: %+v", user)
		}
		if rr.Body.String() != "" && bytes.Contains(rr.Body.Bytes(), []byte("passwordHash")) {
			t.Error("password hash must not be serialized")
		}
	})

	t.Run("NoToken", func(t *testing.T) {
		rr := ts.do(http.MethodGet, "/prisoners", facilityID, "", nil)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 without token, got %d", rr.Code)
		}
	})

	t.Run("CrossFacilityToken", func(t *testing.T) {
		token := ts.login(t, facilityID, "warden-cross", domain.RoleWarden)
		rr := ts.do(http.MethodGet, "/prisoners", "facility-other", token, nil)
		if rr.Code != http.StatusForbidden {
			t.Errorf("expected 403 for cross-facility token, got %d", rr.Code)
		}
	})
}

func TestRoleEnforcement(t *testing.T) {
	ts := createTestServer(t)
	facilityID := "facility-001"
	guardToken := ts.login(t, facilityID, "guard-1", domain.RoleGuard)
	adminToken := ts.login(t, facilityID, "admin-1", domain.RoleAdmin)

	t.Run("GuardCannotAdmit", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/prisoners", facilityID, guardToken, map[string]string{
			"inmateNumber": "IN-9000",
			"lastName":     "Denied",
		})
		if rr.Code != http.StatusForbidden {
			t.Errorf("expected 403 for guard admission, got %d", rr.Code)
		}
	})

	t.Run("AdminBypassesRoleChecks", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/prisoners", facilityID, adminToken, map[string]string{
			"inmateNumber": "IN-9001",
			"lastName":     "Allowed",
		})
		if rr.Code != http.StatusCreated {
			t.Errorf("expected 201 for admin admission, got %d: %s", rr.Code, rr.Body.String())
		}
	})
}

func TestPrisonerCRUD(t *testing.T) {
	ts := createTestServer(t)
	facilityID := "facility-001"
	token := ts.login(t, facilityID, "warden-1", domain.RoleWarden)

	prisonerID := ts.admit(t, facilityID, token, "IN-1001")

	t.Run("MissingRequiredFields", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/prisoners", facilityID, token, map[string]string{
			"firstName": "No",
		})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400 without inmateNumber/lastName, got %d", rr.Code)
		}
	})

	t.Run("Get", func(t *testing.T) {
		rr := ts.do(http.MethodGet, "/prisoners/"+prisonerID, facilityID, token, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}

		var prisoner domain.Prisoner
		json.Unmarshal(rr.Body.Bytes(), &prisoner)
		if prisoner.InmateNumber != "IN-1001" {
			t.Errorf("expected IN-1001, got %s", prisoner.InmateNumber)
		}
		if prisoner.Status != domain.PrisonerStatusActive {
			t.Errorf("expected active status, got %s", prisoner.Status)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		rr := ts.do(http.MethodGet, "/prisoners/nonexistent", facilityID, token, nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("expected 404 for missing prisoner, got %d", rr.Code)
		}
	})

	t.Run("List", func(t *testing.T) {
		rr := ts.do(http.MethodGet, "/prisoners", facilityID, token, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("Update", func(t *testing.T) {
		rr := ts.do(http.MethodPut, "/prisoners/"+prisonerID, facilityID, token, map[string]string{
			"cellBlock": "D",
			"status":    domain.PrisonerStatusTransferred,
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var prisoner domain.Prisoner
		json.Unmarshal(rr.Body.Bytes(), &prisoner)
		if prisoner.CellBlock != "D" || prisoner.Status != domain.PrisonerStatusTransferred {
			t.Errorf("update not applied: %+v", prisoner)
		}
	})

	t.Run("UpdateInvalidStatus", func(t *testing.T) {
		rr := ts.do(http.MethodPut, "/prisoners/"+prisonerID, facilityID, token, map[string]string{
			"status": "escaped",
		})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for invalid status, got %d", rr.Code)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		rr := ts.do(http.MethodDelete, "/prisoners/"+prisonerID, facilityID, token, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		rr = ts.do(http.MethodGet, "/prisoners/"+prisonerID, facilityID, token, nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("expected 404 after delete, got %d", rr.Code)
		}
	})
}

func TestIncidentsAndBehaviorSummary(t *testing.T) {
	ts := createTestServer(t)
	facilityID := "facility-001"
	token := ts.login(t, facilityID, "warden-1", domain.RoleWarden)
	prisonerID := ts.admit(t, facilityID, token, "IN-2001")

	t.Run("BaselineSummary", func(t *testing.T) {
		rr := ts.do(http.MethodGet, "/prisoners/"+prisonerID+"/behavior-summary", facilityID, token, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}

		var summary domain.BehaviorSummary
		json.Unmarshal(rr.Body.Bytes(), &summary)
		if summary.Score != 50 {
			t.Errorf("expected baseline score 50, got %d", summary.Score)
		}
		if summary.Label != domain.LabelFair {
			t.Errorf("expected fair label, got %s", summary.Label)
		}
	})

	t.Run("RecordIncident", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/prisoners/"+prisonerID+"/incidents", facilityID, token, map[string]string{
			"behaviorType": "negative",
			"severity":     "critical",
			"description":  "altercation in yard",
			"reportedBy":   "officer-7",
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("InvalidBehaviorType", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/prisoners/"+prisonerID+"/incidents", facilityID, token, map[string]string{
			"behaviorType": "chaotic",
			"severity":     "low",
		})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for invalid type, got %d", rr.Code)
		}
	})

	t.Run("InvalidSeverity", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/prisoners/"+prisonerID+"/incidents", facilityID, token, map[string]string{
			"behaviorType": "negative",
			"severity":     "catastrophic",
		})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for invalid severity, got %d", rr.Code)
		}
	})

	t.Run("SummaryReflectsIncident", func(t *testing.T) {
		rr := ts.do(http.MethodGet, "/prisoners/"+prisonerID+"/behavior-summary", facilityID, token, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}

		var summary domain.BehaviorSummary
		json.Unmarshal(rr.Body.Bytes(), &summary)
		if summary.Score != 42 {
			t.Errorf("expected score 42 after one critical negative, got %d", summary.Score)
		}
		if summary.TotalIncidents != 1 || summary.NegativeCount != 1 {
			t.Errorf("unexpected counts: %+v", summary)
		}
	})

	t.Run("ListIncidents", func(t *testing.T) {
		rr := ts.do(http.MethodGet, "/prisoners/"+prisonerID+"/incidents", facilityID, token, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}

		var listing struct {
			Incidents []*domain.BehaviorIncident `json:"incidents"`
			Count     int                        `json:"count"`
		}
		json.Unmarshal(rr.Body.Bytes(), &listing)
		if listing.Count != 1 || len(listing.Incidents) != 1 {
			t.Errorf("expected 1 incident, got %+v", listing)
		}
	})
}

func TestRatingsAndTrend(t *testing.T) {
	ts := createTestServer(t)
	facilityID := "facility-001"
	token := ts.login(t, facilityID, "warden-1", domain.RoleWarden)
	prisonerID := ts.admit(t, facilityID, token, "IN-3001")

	postRating := func(score int, date time.Time) *httptest.ResponseRecorder {
		return ts.do(http.MethodPost, "/prisoners/"+prisonerID+"/ratings", facilityID, token, map[string]any{
			"cooperation": score,
			"discipline":  score,
			"respect":     score,
			"workEthic":   score,
			"ratedBy":     "officer-7",
			"ratingDate":  date.Format(time.RFC3339),
		})
	}

	t.Run("OutOfRangeScore", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/prisoners/"+prisonerID+"/ratings", facilityID, token, map[string]any{
			"cooperation": 6,
			"discipline":  3,
			"respect":     3,
			"workEthic":   3,
		})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for out-of-range score, got %d", rr.Code)
		}
	})

	t.Run("ImprovingTrend", func(t *testing.T) {
		base := time.Now().UTC().Add(-6 * time.Hour)
		// Oldest three poor, newest three excellent.
		for i, score := range []int{2, 2, 2, 5, 5, 5} {
			rr := postRating(score, base.Add(time.Duration(i)*time.Hour))
			if rr.Code != http.StatusCreated {
				t.Fatalf("rating %d failed: %d %s", i, rr.Code, rr.Body.String())
			}
		}

		rr := ts.do(http.MethodGet, "/prisoners/"+prisonerID+"/rating-summary", facilityID, token, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}

		var summary domain.RatingSummary
		json.Unmarshal(rr.Body.Bytes(), &summary)
		if summary.Trend != domain.TrendImproving {
			t.Errorf("expected improving trend, got %s", summary.Trend)
		}
		if summary.TrendPercentage <= 0 {
			t.Errorf("expected positive trendPercentage, got %v", summary.TrendPercentage)
		}
		if summary.RatingCount != 6 {
			t.Errorf("expected 6 ratings, got %d", summary.RatingCount)
		}
		if summary.Highest != 5 || summary.Lowest != 2 {
			t.Errorf("expected highest 5 lowest 2, got %v/%v", summary.Highest, summary.Lowest)
		}
	})
}

func TestValidationEndpoint(t *testing.T) {
	ts := createTestServer(t)
	facilityID := "facility-001"
	token := ts.login(t, facilityID, "warden-1", domain.RoleWarden)
	prisonerID := ts.admit(t, facilityID, token, "IN-4001")

	t.Run("NoGovernmentID", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/prisoners/"+prisonerID+"/validate", facilityID, token, map[string]string{})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400 without governmentId, got %d", rr.Code)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/prisoners/"+prisonerID+"/validate", facilityID, token, map[string]string{
			"governmentId": "GOV-MISSING",
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var result domain.ValidationResult
		json.Unmarshal(rr.Body.Bytes(), &result)
		if result.Status != domain.ValidationNotFound {
			t.Errorf("expected not_found, got %s", result.Status)
		}
	})

	t.Run("DiscrepanciesFound", func(t *testing.T) {
		ts.registry.Seed("GOV-100", domain.IdentityRecord{
			Name:        "Jonathan Smith",
			DateOfBirth: time.Date(1985, 3, 15, 0, 0, 0, 0, time.UTC),
			Gender:      domain.GenderMale,
		})

		rr := ts.do(http.MethodPost, "/prisoners/"+prisonerID+"/validate", facilityID, token, map[string]string{
			"governmentId": "GOV-100",
			"name":         "John Smith",
			"dateOfBirth":  "1985-03-15",
			"gender":       "male",
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var result domain.ValidationResult
		json.Unmarshal(rr.Body.Bytes(), &result)
		if result.Status != domain.ValidationDiscrepancies {
			t.Errorf("expected discrepancies_found, got %s", result.Status)
		}
		if len(result.Discrepancies) != 1 || result.Discrepancies[0].Field != "name" {
			t.Errorf("expected single name discrepancy, got %+v", result.Discrepancies)
		}
		// John vs Jonathan: first token differs, last matches.
		if result.Discrepancies[0].Severity != domain.DiscrepancyMajor {
			t.Errorf("expected major severity, got %s", result.Discrepancies[0].Severity)
		}
	})

	t.Run("Verified", func(t *testing.T) {
		ts.registry.Seed("GOV-101", domain.IdentityRecord{
			Name:        "John Smith",
			DateOfBirth: time.Date(1985, 3, 15, 0, 0, 0, 0, time.UTC),
			Gender:      domain.GenderMale,
		})

		rr := ts.do(http.MethodPost, "/prisoners/"+prisonerID+"/validate", facilityID, token, map[string]string{
			"governmentId": "GOV-101",
			"name":         "John Smith",
			"dateOfBirth":  "1985-03-15",
			"gender":       "male",
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}

		var result domain.ValidationResult
		json.Unmarshal(rr.Body.Bytes(), &result)
		if result.Status != domain.ValidationVerified {
			t.Errorf("expected verified, got %s: %+v", result.Status, result.Discrepancies)
		}
	})

	t.Run("HistoryPersisted", func(t *testing.T) {
		rr := ts.do(http.MethodGet, "/prisoners/"+prisonerID+"/validations", facilityID, token, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}

		var listing struct {
			Validations []*domain.ValidationResult `json:"validations"`
			Count       int                        `json:"count"`
		}
		json.Unmarshal(rr.Body.Bytes(), &listing)
		if listing.Count != 3 || len(listing.Validations) != 3 {
			t.Errorf("expected 3 validation records, got %+v", listing)
		}
	})
}

func TestAlertRules(t *testing.T) {
	ts := createTestServer(t)
	facilityID := "facility-001"
	wardenToken := ts.login(t, facilityID, "warden-1", domain.RoleWarden)
	guardToken := ts.login(t, facilityID, "guard-1", domain.RoleGuard)
	prisonerID := ts.admit(t, facilityID, wardenToken, "IN-5001")

	t.Run("GuardCannotCreate", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/alert-rules", facilityID, guardToken, map[string]any{
			"id":         "rule-denied",
			"name":       "Denied",
			"expression": "score < 25",
		})
		if rr.Code != http.StatusForbidden {
			t.Errorf("expected 403 for guard, got %d", rr.Code)
		}
	})

	t.Run("InvalidExpression", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/alert-rules", facilityID, wardenToken, map[string]any{
			"id":         "rule-broken",
			"name":       "Broken",
			"expression": "this is not CEL !!!",
		})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for invalid CEL, got %d", rr.Code)
		}
	})

	t.Run("CreateAndList", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/alert-rules", facilityID, wardenToken, map[string]any{
			"id":          "rule-low-score",
			"name":        "Low Score",
			"description": "behavior score at the floor",
			"expression":  "score < 45",
			"severity":    "high",
			"enabled":     true,
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
		}

		list := ts.do(http.MethodGet, "/alert-rules", facilityID, wardenToken, nil)
		if list.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", list.Code)
		}

		var listing struct {
			Rules []*domain.AlertRule `json:"rules"`
			Count int                 `json:"count"`
		}
		json.Unmarshal(list.Body.Bytes(), &listing)
		if listing.Count != 1 || len(listing.Rules) != 1 || listing.Rules[0].Expression != "score < 45" {
			t.Errorf("unexpected rules: %+v", listing)
		}
	})

	t.Run("GetByID", func(t *testing.T) {
		rr := ts.do(http.MethodGet, "/alert-rules/rule-low-score", facilityID, wardenToken, nil)
		if rr.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rr.Code)
		}
		rr = ts.do(http.MethodGet, "/alert-rules/rule-missing", facilityID, wardenToken, nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("expected 404 for missing rule, got %d", rr.Code)
		}
	})

	t.Run("EvaluatePrisoner", func(t *testing.T) {
		// Drive the score below the rule threshold.
		for i := 0; i < 3; i++ {
			ts.do(http.MethodPost, "/prisoners/"+prisonerID+"/incidents", facilityID, wardenToken, map[string]string{
				"behaviorType": "negative",
				"severity":     "critical",
			})
		}

		rr := ts.do(http.MethodGet, "/prisoners/"+prisonerID+"/alerts", facilityID, wardenToken, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var resp struct {
			Flagged int                  `json:"flagged"`
			Results []domain.AlertResult `json:"results"`
		}
		json.Unmarshal(rr.Body.Bytes(), &resp)
		if resp.Flagged != 1 {
			t.Errorf("expected 1 flagged rule, got %d (%+v)", resp.Flagged, resp.Results)
		}
	})
}

func TestVisitorsFlow(t *testing.T) {
	ts := createTestServer(t)
	facilityID := "facility-001"
	wardenToken := ts.login(t, facilityID, "warden-1", domain.RoleWarden)
	prisonerID := ts.admit(t, facilityID, wardenToken, "IN-6001")

	var visitorID string

	t.Run("Create", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/visitors", facilityID, wardenToken, map[string]string{
			"prisonerId":   prisonerID,
			"firstName":    "Maria",
			"lastName":     "Smith",
			"relationship": "spouse",
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
		}

		var visitor domain.Visitor
		json.Unmarshal(rr.Body.Bytes(), &visitor)
		if visitor.Approved {
			t.Error("new visitors must start unapproved")
		}
		visitorID = visitor.ID
	})

	t.Run("UnknownPrisonerRejected", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/visitors", facilityID, wardenToken, map[string]string{
			"prisonerId": "nonexistent",
			"firstName":  "Ghost",
			"lastName":   "Visitor",
		})
		if rr.Code != http.StatusNotFound {
			t.Errorf("expected 404 for unknown prisoner, got %d", rr.Code)
		}
	})

	t.Run("CheckInBeforeApproval", func(t *testing.T) {
		rr := ts.do(http.MethodPost, "/visitors/"+visitorID+"/checkin", facilityID, wardenToken, nil)
		if rr.Code != http.StatusForbidden {
			t.Errorf("expected 403 before approval, got %d", rr.Code)
		}
	})

	t.Run("ApproveAndCheckIn", func(t *testing.T) {
		rr := ts.do(http.MethodPut, "/visitors/"+visitorID+"/approve", facilityID, wardenToken, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("approve failed: %d %s", rr.Code, rr.Body.String())
		}

		rr = ts.do(http.MethodPost, "/visitors/"+visitorID+"/checkin", facilityID, wardenToken, nil)
		if rr.Code != http.StatusOK {
			t.Errorf("expected 200 for approved check-in, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("DailyVisitThrottle", func(t *testing.T) {
		// Two more check-ins reach the daily cap; the next is rejected.
		ts.do(http.MethodPost, "/visitors/"+visitorID+"/checkin", facilityID, wardenToken, nil)
		ts.do(http.MethodPost, "/visitors/"+visitorID+"/checkin", facilityID, wardenToken, nil)

		rr := ts.do(http.MethodPost, "/visitors/"+visitorID+"/checkin", facilityID, wardenToken, nil)
		if rr.Code != http.StatusTooManyRequests {
			t.Errorf("expected 429 past the daily limit, got %d", rr.Code)
		}
	})

	t.Run("ListByPrisoner", func(t *testing.T) {
		rr := ts.do(http.MethodGet, "/visitors?prisonerId="+prisonerID, facilityID, wardenToken, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}

		var listing struct {
			Visitors []*domain.Visitor `json:"visitors"`
			Count    int               `json:"count"`
		}
		json.Unmarshal(rr.Body.Bytes(), &listing)
		if listing.Count != 1 || len(listing.Visitors) != 1 || !listing.Visitors[0].Approved {
			t.Errorf("unexpected visitors: %+v", listing)
		}
	})
}

func TestStaffEndpoints(t *testing.T) {
	ts := createTestServer(t)
	facilityID := "facility-001"
	token := ts.login(t, facilityID, "warden-1", domain.RoleWarden)

	rr := ts.do(http.MethodPost, "/staff", facilityID, token, map[string]string{
		"firstName":   "Dana",
		"lastName":    "Reyes",
		"badgeNumber": "B-100",
		"role":        "guard",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var staff domain.StaffMember
	json.Unmarshal(rr.Body.Bytes(), &staff)
	if !staff.Active {
		t.Error("expected new staff to be active")
	}

	list := ts.do(http.MethodGet, "/staff", facilityID, token, nil)
	if list.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", list.Code)
	}

	del := ts.do(http.MethodDelete, "/staff/"+staff.ID, facilityID, token, nil)
	if del.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", del.Code)
	}
}
