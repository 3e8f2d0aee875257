package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/campuscore/approval-service/internal/errs"
	"github.com/campuscore/approval-service/internal/model"
	"github.com/campuscore/approval-service/pkg/auth"
	"github.com/campuscore/approval-service/pkg/validate"
)

type Handler struct {
	approvalSvc ApprovalService
	log         *zap.Logger
}

func New(approvalSvc ApprovalService, log *zap.Logger) *Handler {
	return &Handler{
		approvalSvc: approvalSvc,
		log:         log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", newRateLimiterMW(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()

	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(requestLoggerConfig(h.log)),
		middleware.RequestID(),
		newRateLimiterMW(apiRPS),
		auth.ActorContext,
	)

	api.POST("/requests", h.Submit)
	api.GET("/requests", h.ListPending)
	api.GET("/requests/:requestId", h.GetStatus)
	api.POST("/requests/:requestId/review", h.Review)
	api.POST("/requests/:requestId/withdraw", h.Withdraw)
	api.POST("/requests/:requestId/return", h.Return)

	api.POST("/resources", h.RegisterResource)
	api.POST("/resources/:resourceId/restock", h.Restock)
	api.GET("/resources/:resourceId/availability", h.Availability)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func httpError(err error) error {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrNotAuthorized), errors.Is(err, errs.ErrNotOwner):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, errs.ErrInsufficientCapacity),
		errors.Is(err, errs.ErrAlreadyResolved),
		errors.Is(err, errs.ErrNotIssued),
		errors.Is(err, errs.ErrDuplicateResource):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrInvalidDecision),
		errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrUnknownKind):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) Submit(c echo.Context) error {
	var req model.SubmitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor, err := auth.ActorFromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	req.RequesterID = actor.ID
	req.RequesterRole = model.Role(actor.Role)

	if err := c.Validate(req); err != nil {
		return err
	}

	resp, err := h.approvalSvc.Submit(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Review(c echo.Context) error {
	requestID := c.Param("requestId")
	if requestID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty requestId")
	}
	var req model.ReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor, err := auth.ActorFromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	req.ActorID = actor.ID
	req.ActorRole = model.Role(actor.Role)

	if err := c.Validate(req); err != nil {
		return err
	}

	resp, err := h.approvalSvc.Review(c.Request().Context(), requestID, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Withdraw(c echo.Context) error {
	requestID := c.Param("requestId")
	if requestID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty requestId")
	}
	actor, err := auth.ActorFromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	resp, err := h.approvalSvc.Withdraw(c.Request().Context(), requestID, actor.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Return(c echo.Context) error {
	requestID := c.Param("requestId")
	if requestID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty requestId")
	}
	resp, err := h.approvalSvc.Return(c.Request().Context(), requestID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetStatus(c echo.Context) error {
	requestID := c.Param("requestId")
	if requestID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty requestId")
	}
	resp, err := h.approvalSvc.GetStatus(c.Request().Context(), requestID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListPending(c echo.Context) error {
	actor, err := auth.ActorFromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	page, size, err := pageParams(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resp, err := h.approvalSvc.ListPending(c.Request().Context(), model.Role(actor.Role), page, size)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) RegisterResource(c echo.Context) error {
	var req model.RegisterResourceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	resp, err := h.approvalSvc.RegisterResource(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Restock(c echo.Context) error {
	resourceID := c.Param("resourceId")
	if resourceID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty resourceId")
	}
	var req model.RestockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	resp, err := h.approvalSvc.Restock(c.Request().Context(), resourceID, req.Quantity)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Availability(c echo.Context) error {
	resourceID := c.Param("resourceId")
	if resourceID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty resourceId")
	}
	resp, err := h.approvalSvc.Availability(c.Request().Context(), resourceID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, struct {
		ResourceID string `json:"resourceId"`
		Available  int    `json:"available"`
	}{
		ResourceID: resp.ResourceID,
		Available:  resp.Available(),
	})
}

func pageParams(c echo.Context) (int, int, error) {
	var page, size int
	var err error
	if v := c.QueryParam("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil || page < 0 {
			return 0, 0, errors.New("invalid page")
		}
	}
	if v := c.QueryParam("size"); v != "" {
		if size, err = strconv.Atoi(v); err != nil || size < 0 {
			return 0, 0, errors.New("invalid size")
		}
	}
	return page, size, nil
}
