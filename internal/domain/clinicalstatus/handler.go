package clinicalstatus

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/rtw/rtw/internal/domain/prediction"
	"github.com/rtw/rtw/internal/domain/treatmentplan"
	"github.com/rtw/rtw/internal/platform/auth"
	"github.com/rtw/rtw/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the case endpoints and the stateless engine
// endpoints on api. engineMW wraps only the engine group.
func (h *Handler) RegisterRoutes(api *echo.Group, engineMW ...echo.MiddlewareFunc) {
	read := api.Group("", auth.RequireRole(auth.RoleCaseManager, auth.RoleClinician, auth.RoleAnalyst))
	read.GET("/cases/:id/restrictions", h.GetEffectiveRestrictions)
	read.GET("/cases/:id/treatment-plans", h.ListPlans)
	read.GET("/cases/:id/treatment-plans/active/safety", h.ValidateActivePlan)
	read.GET("/cases/:id/prediction", h.PredictCase)

	write := api.Group("", auth.RequireRole(auth.RoleCaseManager, auth.RoleClinician))
	write.POST("/cases/:id/treatment-plans", h.GeneratePlan)

	portfolio := api.Group("", auth.RequireRole(auth.RoleCaseManager, auth.RoleAnalyst))
	portfolio.GET("/predictions/portfolio", h.PredictPortfolio)

	engine := api.Group("/engine", append(engineMW, auth.RequireRole(auth.RoleCaseManager, auth.RoleClinician, auth.RoleAnalyst))...)
	engine.POST("/restrictions/combine", h.Combine)
	engine.POST("/treatment-plans", h.GenerateStateless)
	engine.POST("/treatment-plans/validate", h.ValidateStateless)
	engine.POST("/predictions", h.PredictStateless)
	engine.POST("/predictions/summary", h.Summarize)
}

func caseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid case id")
	}
	return id, nil
}

// httpError maps service errors onto HTTP status codes.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrCaseNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "case not found")
	case errors.Is(err, ErrNoActivePlan):
		return echo.NewHTTPError(http.StatusNotFound, "no active treatment plan")
	case errors.Is(err, ErrCaseClosed):
		return echo.NewHTTPError(http.StatusConflict, "case is closed")
	case errors.Is(err, ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

// -- Case endpoints --

func (h *Handler) GetEffectiveRestrictions(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	eff, err := h.svc.EffectiveRestrictions(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, eff)
}

func (h *Handler) GeneratePlan(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	sp, err := h.svc.GeneratePlan(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, sp)
}

func (h *Handler) ListPlans(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.PlanHistory(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	if items == nil {
		items = []*StoredPlan{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset).WithLinks(c.Request().URL.Path))
}

func (h *Handler) ValidateActivePlan(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	report, err := h.svc.ValidateActivePlan(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) PredictCase(c echo.Context) error {
	id, err := caseID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.PredictCase(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) PredictPortfolio(c echo.Context) error {
	p, err := h.svc.PredictPortfolio(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

// -- Stateless engine endpoints --

func (h *Handler) Combine(c echo.Context) error {
	var req CombineRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, CombineCertificates(req))
}

func (h *Handler) GenerateStateless(c echo.Context) error {
	var req PlanRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, now, err := req.Input(h.svc.Now())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, treatmentplan.Generate(in, now))
}

func (h *Handler) ValidateStateless(c echo.Context) error {
	var req ValidatePlanRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, treatmentplan.ValidatePlanSafety(*req.Plan, req.Constraints))
}

func (h *Handler) PredictStateless(c echo.Context) error {
	var req PredictRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	res, err := PredictAll(h.svc.Predictor(), req, h.svc.Now())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) Summarize(c echo.Context) error {
	var req SummaryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, prediction.Summarize(req.Predictions))
}
