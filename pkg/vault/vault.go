package vault

import (
	"os"
	"time"

	"github.com/hashicorp/vault-client-go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("vault", fx.Provide(New))

// New builds a Vault client when VAULT_ADDR is set. Without it the provider
// yields nil and configuration falls back to file and environment values.
func New() (*vault.Client, error) {
	addr := os.Getenv("VAULT_ADDR")
	if addr == "" {
		return nil, nil
	}

	client, err := vault.New(
		vault.WithAddress(addr),
		vault.WithRequestTimeout(10*time.Second),
	)
	if err != nil {
		return nil, err
	}

	if token := os.Getenv("VAULT_TOKEN"); token != "" {
		if err := client.SetToken(token); err != nil {
			return nil, err
		}
	}

	zap.L().Info("[Vault] Client configured", zap.String("addr", addr))
	return client, nil
}
