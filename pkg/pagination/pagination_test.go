package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(target string) Params {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return FromContext(e.NewContext(req, rec))
}

func TestFromContextDefaults(t *testing.T) {
	p := paramsFor("/")
	if p.Limit != DefaultLimit || p.Offset != 0 {
		t.Errorf("expected defaults, got %+v", p)
	}
}

func TestFromContextClampsLimit(t *testing.T) {
	p := paramsFor("/?limit=5000")
	if p.Limit != MaxLimit {
		t.Errorf("expected limit clamped to %d, got %d", MaxLimit, p.Limit)
	}

	p = paramsFor("/?limit=-3&offset=-7")
	if p.Limit != DefaultLimit || p.Offset != 0 {
		t.Errorf("negative params should fall back, got %+v", p)
	}
}

func TestFromContextReadsValues(t *testing.T) {
	p := paramsFor("/?limit=10&offset=30")
	if p.Limit != 10 || p.Offset != 30 {
		t.Errorf("expected 10/30, got %+v", p)
	}
}

func TestNewResponseHasMore(t *testing.T) {
	r := NewResponse([]int{1, 2}, 50, 20, 0)
	if !r.HasMore {
		t.Error("expected has_more with 50 total and first page of 20")
	}
	r = NewResponse([]int{1, 2}, 50, 20, 40)
	if r.HasMore {
		t.Error("last page should not report has_more")
	}
}
