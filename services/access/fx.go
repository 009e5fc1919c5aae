package access

import (
	"context"

	"github.com/kapostolos1/estia-app/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("access.module",
	fx.Provide(
		NewManager,
		NewListener,
		NewHandler,
	),
	fx.Invoke(registerRoutes),
	fx.Invoke(registerLifecycle),
)

func registerRoutes(h *Handler, r *gin.Engine, cfg *config.Config) {
	h.RegisterRoutes(r, cfg.Session.Secret)
}

func registerLifecycle(lc fx.Lifecycle, m *Manager, l *Listener) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			m.Start()
			l.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			l.Stop()
			m.Close()
			return nil
		},
	})
}
