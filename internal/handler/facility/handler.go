package facility

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tekhe/dashboard-api/internal/service/directory"
	apperrors "github.com/tekhe/dashboard-api/pkg/errors"
	"github.com/tekhe/dashboard-api/pkg/httputil"
)

type Handler struct {
	directory *directory.Service
}

func NewHandler(dir *directory.Service) *Handler {
	return &Handler{directory: dir}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	facilities := r.Group("/facilities")
	{
		facilities.GET("", h.ListFacilities)
		facilities.GET("/:id", h.GetFacility)
	}
}

func (h *Handler) ListFacilities(c *gin.Context) {
	if district := c.Query("district_id"); district != "" {
		districtID, err := uuid.Parse(district)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid district id", err))
			return
		}
		facilities, err := h.directory.ListByDistrict(c.Request.Context(), districtID)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithSuccess(c, facilities)
		return
	}

	facilities, err := h.directory.ListFacilities(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, facilities)
}

func (h *Handler) GetFacility(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid facility id", err))
		return
	}

	facility, err := h.directory.GetFacility(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NotFound("facility", err))
		return
	}
	httputil.RespondWithSuccess(c, facility)
}
