package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tableside/floor-manager/internal/repository"
)

// AuditHandler serves the locally stored shift audit trail.  The
// records are written asynchronously by the queue consumer, so the
// endpoint is eventually consistent with the commands that produced
// them.
type AuditHandler struct {
	Repo *repository.AuditRepo
}

// NewAuditHandler constructs an AuditHandler.  A nil repo means the
// audit database is not configured; the endpoint then reports 503.
func NewAuditHandler(repo *repository.AuditRepo) *AuditHandler {
	return &AuditHandler{Repo: repo}
}

// List handles GET /v1/audit?date=YYYY-MM-DD&limit=N.  Results come
// back newest first.  The date defaults to today on the server clock;
// the audit trail is an operator tool, not floor state, so the
// restaurant time zone is not consulted here.
func (h *AuditHandler) List(c echo.Context) error {
	if h.Repo == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "audit store not configured"})
	}
	date, err := parseDate(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if date == "" {
		date = today()
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
	}
	items, err := h.Repo.ListByDate(c.Request().Context(), date, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load audit trail"})
	}
	if items == nil {
		items = []repository.AuditRecord{}
	}
	return c.JSON(http.StatusOK, echo.Map{"date": date, "items": items})
}
