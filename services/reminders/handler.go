package reminders

import (
	"crypto/subtle"
	"net/http"

	"github.com/kapostolos1/estia-app/pkg/errutil"
	"github.com/kapostolos1/estia-app/pkg/task"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

// Handler exposes the external cron trigger. It enqueues a run instead of
// executing inline so the HTTP caller never waits on the mail provider.
type Handler struct {
	enq    task.Enqueuer
	secret string
}

func NewHandler(enq task.Enqueuer, secret string) *Handler {
	return &Handler{enq: enq, secret: secret}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/v1/cron/renewal-reminders", h.Trigger)
}

func (h *Handler) Trigger(c *gin.Context) {
	provided := c.GetHeader("X-Cron-Secret")
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) != 1 {
		c.Error(errutil.Unauthorized("invalid cron secret", nil))
		return
	}

	if _, err := h.enq.Enqueue(c.Request.Context(), NewRunTask(), asynq.Queue("critical")); err != nil {
		c.Error(errutil.Internal("failed to enqueue reminder run", err))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
