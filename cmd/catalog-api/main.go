package main

import (
	"context"

	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	"github.com/xenking/anomie-storefront/internal/catalogapi"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := catalogapi.LoadConfig()
		if err != nil {
			return err
		}
		return catalogapi.Run(ctx, lg, m, cfg)
	})
}
