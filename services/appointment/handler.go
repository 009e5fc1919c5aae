package appointment

import (
	"net/http"
	"time"

	"github.com/kapostolos1/estia-app/pkg/errutil"
	"github.com/kapostolos1/estia-app/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, secret string) {
	g := r.Group("/v1/appointments", middleware.Session(secret))
	g.POST("", h.Create)
	g.GET("", h.List)
	g.DELETE("/:id", h.Cancel)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errutil.BadRequest("invalid appointment payload", err))
		return
	}

	appt, err := h.svc.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

func (h *Handler) List(c *gin.Context) {
	from, err := parseTimeParam(c.Query("from"))
	if err != nil {
		c.Error(errutil.BadRequest("invalid from timestamp", err))
		return
	}
	to, err := parseTimeParam(c.Query("to"))
	if err != nil {
		c.Error(errutil.BadRequest("invalid to timestamp", err))
		return
	}

	rows, err := h.svc.List(c.Request.Context(), middleware.UserID(c), from, to)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": rows})
}

func (h *Handler) Cancel(c *gin.Context) {
	if err := h.svc.Cancel(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseTimeParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}
