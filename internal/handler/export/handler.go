package export

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tekhe/dashboard-api/internal/middleware"
	exportsvc "github.com/tekhe/dashboard-api/internal/service/export"
	apperrors "github.com/tekhe/dashboard-api/pkg/errors"
	"github.com/tekhe/dashboard-api/pkg/httputil"
)

type Handler struct {
	service exportsvc.ExportService
}

func NewHandler(service exportsvc.ExportService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	exports := r.Group("/exports")
	{
		exports.GET("/dhis2", h.DHIS2Export)
	}
}

func (h *Handler) DHIS2Export(c *gin.Context) {
	orgUnit := c.Query("org_unit")
	if orgUnit == "" {
		httputil.RespondWithError(c, apperrors.BadRequest("org_unit is required", nil))
		return
	}

	period := time.Now()
	if p := c.Query("period"); p != "" {
		parsed, err := time.Parse("200601", p)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("period must be YYYYMM", err))
			return
		}
		period = parsed
	}

	set, err := h.service.DHIS2DataValueSet(c.Request.Context(), middleware.UserFromContext(c), orgUnit, period)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, set)
}
