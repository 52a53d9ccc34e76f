package identity

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carelink/carelink/internal/platform/apperr"
	"github.com/carelink/carelink/internal/platform/auth"
	"github.com/carelink/carelink/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// The doctor directory is readable by any authenticated role
	api.GET("/doctors", h.ListDoctors)

	patients := api.Group("", auth.RequireRole(auth.RolePatient))
	patients.POST("/patients/me", h.CreatePatient)
	patients.GET("/patients/me", h.GetPatient)
	patients.PUT("/patients/me", h.UpdatePatient)

	doctors := api.Group("", auth.RequireRole(auth.RoleDoctor))
	doctors.POST("/doctors/me", h.CreateDoctor)
	doctors.GET("/doctors/me", h.GetDoctor)
	doctors.PUT("/doctors/me", h.UpdateDoctor)

	pharmacies := api.Group("", auth.RequireRole(auth.RolePharmacy))
	pharmacies.POST("/pharmacies/me", h.CreatePharmacy)
	pharmacies.GET("/pharmacies/me", h.GetPharmacy)
	pharmacies.PUT("/pharmacies/me", h.UpdatePharmacy)
}

func callerIdentity(c echo.Context) (auth.Identity, error) {
	ident, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return auth.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return ident, nil
}

func (h *Handler) CreatePatient(c echo.Context) error {
	ident, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var in CreatePatientInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.CreatePatient(c.Request().Context(), ident, &in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	ident, err := callerIdentity(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetOwnPatient(c.Request().Context(), ident)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	ident, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var in Patient
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.UpdateOwnPatient(c.Request().Context(), ident, &in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	ident, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var in CreateDoctorInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.CreateDoctor(c.Request().Context(), ident, &in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	ident, err := callerIdentity(c)
	if err != nil {
		return err
	}
	d, err := h.svc.GetOwnDoctor(c.Request().Context(), ident)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	ident, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var in Doctor
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.UpdateOwnDoctor(c.Request().Context(), ident, &in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDoctors(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) CreatePharmacy(c echo.Context) error {
	ident, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var in CreatePharmacyInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.CreatePharmacy(c.Request().Context(), ident, &in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPharmacy(c echo.Context) error {
	ident, err := callerIdentity(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetOwnPharmacy(c.Request().Context(), ident)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdatePharmacy(c echo.Context) error {
	ident, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var in Pharmacy
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.UpdateOwnPharmacy(c.Request().Context(), ident, &in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}
