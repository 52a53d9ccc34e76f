package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var testKey = []byte("test-signing-key")

func signToken(t *testing.T, sub, role string) string {
	t.Helper()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: role,
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return tok
}

func doRequest(mw echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, *Identity) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured *Identity
	handler := mw(func(c echo.Context) error {
		if id, ok := IdentityFromContext(c.Request().Context()); ok {
			captured = &id
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, captured
}

func TestJWTMiddlewareResolvesIdentity(t *testing.T) {
	userID := uuid.New()
	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})

	rec, id := doRequest(mw, "Bearer "+signToken(t, userID.String(), "doctor"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if id == nil {
		t.Fatal("identity not set on context")
	}
	if id.UserID != userID || id.Role != RoleDoctor {
		t.Errorf("unexpected identity: %+v", id)
	}
}

func TestJWTMiddlewareRejects(t *testing.T) {
	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-token"},
		{"non-uuid subject", "Bearer " + signToken(t, "alice", "doctor")},
		{"unknown role", "Bearer " + signToken(t, uuid.NewString(), "admin")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _ := doRequest(mw, tc.header)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestDevAuthMiddleware(t *testing.T) {
	e := echo.New()
	userID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", userID.String())
	req.Header.Set("X-Role", "pharmacy")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := DevAuthMiddleware()(func(c echo.Context) error {
		id, ok := IdentityFromContext(c.Request().Context())
		if !ok {
			t.Fatal("identity not set")
		}
		if id.UserID != userID || id.Role != RolePharmacy {
			t.Errorf("unexpected identity: %+v", id)
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	run := func(identity *Identity, roles ...Role) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if identity != nil {
			req = req.WithContext(WithIdentity(req.Context(), *identity))
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		handler := RequireRole(roles...)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		if err := handler(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		return rec.Code
	}

	doctor := &Identity{UserID: uuid.New(), Role: RoleDoctor}
	if code := run(doctor, RoleDoctor); code != http.StatusOK {
		t.Errorf("doctor should pass doctor gate, got %d", code)
	}
	if code := run(doctor, RolePharmacy); code != http.StatusForbidden {
		t.Errorf("doctor should fail pharmacy gate, got %d", code)
	}
	if code := run(doctor, RolePatient, RoleDoctor); code != http.StatusOK {
		t.Errorf("doctor should pass patient-or-doctor gate, got %d", code)
	}
	if code := run(nil, RoleDoctor); code != http.StatusUnauthorized {
		t.Errorf("anonymous caller should get 401, got %d", code)
	}
}

func TestParseRole(t *testing.T) {
	for _, ok := range []string{"patient", "doctor", "pharmacy"} {
		if _, err := ParseRole(ok); err != nil {
			t.Errorf("ParseRole(%q) unexpected error: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "admin", "Doctor", "nurse"} {
		if _, err := ParseRole(bad); err == nil {
			t.Errorf("ParseRole(%q) should fail", bad)
		}
	}
}
