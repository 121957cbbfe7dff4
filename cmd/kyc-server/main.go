package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/information-sharing-networks/kyc-demo/internal/config"
	"github.com/information-sharing-networks/kyc-demo/internal/logger"
	"github.com/information-sharing-networks/kyc-demo/internal/server"
	"github.com/information-sharing-networks/kyc-demo/internal/version"
)

//	@title			kyc-server
//	@description	kyc-server issues Sumsub identity verification (WebSDK) session links.
//	@description
//	@description	## Error responses
//	@description	The session link endpoints return `502` whenever a link could not be issued, whatever the cause
//	@description	(unknown user, Sumsub unavailable, rejected credentials). Causes are recorded in the server logs
//	@description	and in the `kyc_workflow_failures_total` metric.
//	@description
//	@description	All endpoints may also return:
//	@description	- `413` Request body exceeds size limit
//	@description	- `429` Rate limit exceeded
//	@license.name	MIT

//	@accept		json
//	@produce	json

func main() {
	cmd := &cobra.Command{
		Use:   "kyc-server",
		Short: "Sumsub KYC session link server",
		Long:  `kyc-server exposes the session link workflows (generate and regenerate) over HTTP`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	v := version.Get()
	cmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Printf("failed to load configuration: %v", err.Error())
		os.Exit(1)
	}

	appLogger := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)

	appLogger.Info("Configuration loaded",
		slog.String("ENVIRONMENT", cfg.Environment),
		slog.String("HOST", cfg.Host),
		slog.Int("PORT", cfg.Port),
		slog.String("LOG_LEVEL", cfg.LogLevel),
		slog.String("SUMSUB_BASE_URL", cfg.SumsubBaseURL),
		slog.String("SUMSUB_LEVEL_NAME", cfg.SumsubLevelName),
		slog.Duration("SUMSUB_HTTP_TIMEOUT", cfg.SumsubHTTPTimeout),
		slog.Any("credentials", cfg.Credentials()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLogger.Info("Starting server", slog.String("version", version.Get().Version))

	srv := server.NewServer(cfg, appLogger)

	if err := srv.Start(ctx); err != nil {
		appLogger.Error("Server error", slog.String("error", err.Error()))
		return err
	}

	appLogger.Info("server shutdown complete")
	return nil
}
