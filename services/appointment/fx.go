package appointment

import (
	"github.com/kapostolos1/estia-app/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("appointment.module",
	fx.Provide(
		NewService,
		NewHandler,
	),
	fx.Invoke(func(h *Handler, r *gin.Engine, cfg *config.Config) {
		h.RegisterRoutes(r, cfg.Session.Secret)
	}),
)
