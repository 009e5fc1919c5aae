package access

import (
	"net/http"

	"github.com/kapostolos1/estia-app/pkg/errutil"
	"github.com/kapostolos1/estia-app/pkg/middleware"
	"github.com/kapostolos1/estia-app/services/business"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	manager  *Manager
	resolver *business.Resolver
}

func NewHandler(manager *Manager, resolver *business.Resolver) *Handler {
	return &Handler{manager: manager, resolver: resolver}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, secret string) {
	g := r.Group("/v1/access", middleware.Session(secret))
	g.GET("", h.Get)
	g.POST("/refresh", h.Refresh)
}

// Get returns the current access decision for the caller's business. A user
// with no business gets the permissive unknown decision, not an error.
func (h *Handler) Get(c *gin.Context) {
	d, err := h.decide(c, false)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Refresh forces a reconciliation before answering. Clients call it after a
// purchase completes instead of waiting for the realtime event.
func (h *Handler) Refresh(c *gin.Context) {
	d, err := h.decide(c, true)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) decide(c *gin.Context, force bool) (Decision, error) {
	member, err := h.resolver.Resolve(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		if errutil.CodeOf(err) == errutil.StatusNotFound {
			return Unknown(), nil
		}
		return Decision{}, err
	}

	ctl := h.manager.Acquire(c.Request.Context(), member.BusinessID)
	if force {
		ctl.Refresh(c.Request.Context())
	}
	return ctl.Decision(), nil
}
