package reminders

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/kapostolos1/estia-app/pkg/middleware"
	"github.com/kapostolos1/estia-app/pkg/taskname"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
	ctxs  []context.Context
	opts  [][]asynq.Option
}

func (f *fakeEnqueuer) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
	f.ctxs = append(f.ctxs, ctx)
	f.opts = append(f.opts, opts)
	return &asynq.TaskInfo{}, nil
}

func newTriggerRouter(enq *fakeEnqueuer, secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Error())
	NewHandler(enq, secret).RegisterRoutes(r)
	return r
}

func TestTriggerRejectsBadSecret(t *testing.T) {
	enq := &fakeEnqueuer{}
	r := newTriggerRouter(enq, "s3cret")

	for _, secret := range []string{"", "wrong"} {
		req := httptest.NewRequest(http.MethodPost, "/v1/cron/renewal-reminders", nil)
		if secret != "" {
			req.Header.Set("X-Cron-Secret", secret)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	assert.Empty(t, enq.tasks)
}

func TestTriggerRejectsWhenUnconfigured(t *testing.T) {
	enq := &fakeEnqueuer{}
	r := newTriggerRouter(enq, "")

	req := httptest.NewRequest(http.MethodPost, "/v1/cron/renewal-reminders", nil)
	req.Header.Set("X-Cron-Secret", "")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, enq.tasks)
}

func TestTriggerEnqueuesRun(t *testing.T) {
	enq := &fakeEnqueuer{}
	r := newTriggerRouter(enq, "s3cret")

	req := httptest.NewRequest(http.MethodPost, "/v1/cron/renewal-reminders", nil)
	req.Header.Set("X-Cron-Secret", "s3cret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, enq.tasks, 1)
	assert.Equal(t, taskname.RenewalReminderRun, enq.tasks[0].Type())
	require.Len(t, enq.ctxs, 1)
	assert.NotNil(t, enq.ctxs[0])
}
