package simulation

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/attendsim/attendsim/internal/platform/risk"
)

func newTestHandler(t *testing.T, draws ...float64) (*Handler, *echo.Echo) {
	t.Helper()
	e, _, _, _ := newTestEngine(t, draws...)
	return NewHandler(e, risk.Heuristic{}), echo.New()
}

func TestHealthPayload(t *testing.T) {
	h, e := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Health(c); err != nil {
		t.Fatalf("health: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["ok"] != true || body["todayIndex"].(float64) != 0 {
		t.Fatalf("unexpected body: %v", body)
	}
	if body["startDateISO"] != "2026-03-01" || body["todayDateISO"] != "2026-03-01" {
		t.Fatalf("unexpected dates: %v", body)
	}
}

func TestAdvanceHandlerRejectsFarTarget(t *testing.T) {
	h, e := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/simulate/advance", strings.NewReader(`{"toDayIndex":3}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Advance(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if he.Message != "Only +1 day advance is allowed" {
		t.Fatalf("unexpected message: %v", he.Message)
	}
}

func TestAdvanceHandlerEmptyBodyMovesOneDay(t *testing.T) {
	h, e := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/simulate/advance", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Advance(c); err != nil {
		t.Fatalf("advance: %v", err)
	}
	var res AdvanceResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !res.OK || res.TodayIndex != 1 || res.TodayDateISO != "2026-03-02" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestPredictHandler(t *testing.T) {
	h, e := newTestHandler(t)
	body := `{"features":{"age":40,"prev_no_shows":2,"distance_km":10,"slot_hour":12,"new_patient":false}}`
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Predict(c); err != nil {
		t.Fatalf("predict: %v", err)
	}
	var res map[string]float64
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	// 0.15 + 0.05*2 + 0.01*10 = 0.35
	if res["risk"] != 0.35 {
		t.Fatalf("expected 0.35, got %v", res["risk"])
	}
}

func TestSendSMSHandlerUnknownID(t *testing.T) {
	h, e := newTestHandler(t)
	body := `{"appointment_id":"` + uuid.New().String() + `","template":"hi"}`
	req := httptest.NewRequest(http.MethodPost, "/actions/send_sms", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.SendSMS(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}
