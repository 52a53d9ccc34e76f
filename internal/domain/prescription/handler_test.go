package prescription

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/carelink/carelink/internal/platform/auth"
)

func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string, ident *auth.Identity, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if ident != nil {
		req = req.WithContext(auth.WithIdentity(req.Context(), *ident))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for k, v := range params {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestCreateHandler(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	body := `{"patient_id":"` + f.patientID.String() + `","medications":[{"name":"Amoxicillin","dosage":"500mg","frequency":"3x daily"}]}`
	rec := doJSON(t, h.Create, http.MethodPost, "/api/v1/prescriptions", body, &f.doctorIdent, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"status":"pending"`) {
		t.Errorf("response should carry pending status: %s", rec.Body.String())
	}
}

func TestCreateHandlerRejectsEmptyMedications(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	body := `{"patient_id":"` + f.patientID.String() + `","medications":[]}`
	rec := doJSON(t, h.Create, http.MethodPost, "/api/v1/prescriptions", body, &f.doctorIdent, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSetStatusHandlerMapsConflict(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	p := f.create(t, &f.pharmacyID)

	rec := doJSON(t, h.SetStatus, http.MethodPut, "/api/v1/prescriptions/"+p.ID.String()+"/status",
		`{"status":"completed"}`, &f.pharmIdent, map[string]string{"id": p.ID.String()})
	if rec.Code != http.StatusConflict {
		t.Errorf("illegal transition should map to 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSetStatusHandlerRejectsUnknownStatus(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	p := f.create(t, &f.pharmacyID)

	rec := doJSON(t, h.SetStatus, http.MethodPut, "/api/v1/prescriptions/"+p.ID.String()+"/status",
		`{"status":"shipped"}`, &f.pharmIdent, map[string]string{"id": p.ID.String()})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown status should be 400, got %d", rec.Code)
	}
}

func TestListHandlerRequiresIdentity(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	rec := doJSON(t, h.List, http.MethodGet, "/api/v1/prescriptions", "", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without identity, got %d", rec.Code)
	}
}
