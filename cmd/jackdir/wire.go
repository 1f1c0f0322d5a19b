//go:build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/hayeah/jackdir/internal/session"
	"github.com/hayeah/jackdir/scan"
)

func InitApp(args *Args) (*App, func(), error) {
	wire.Build(
		ProvideConfig,
		ProvideLogger,
		ProvideScanner,
		wire.Bind(new(session.Scanner), new(*scan.Scanner)),
		ProvideSession,
		ProvideCounter,
		ProvideHistory,
		ProvideDelivery,
		ProvideExporterFactory,
		wire.Struct(new(App), "Args", "Config", "Logger", "Session", "History", "NewExporter"),
	)
	return nil, nil, nil
}
