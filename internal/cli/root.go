package cli

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/information-sharing-networks/kyc-demo/internal/config"
	"github.com/information-sharing-networks/kyc-demo/internal/kyc"
	"github.com/information-sharing-networks/kyc-demo/internal/logger"
	"github.com/information-sharing-networks/kyc-demo/internal/sumsub"
	"github.com/information-sharing-networks/kyc-demo/internal/version"
)

var (
	cfg       *config.Environment
	appLogger *slog.Logger
	client    *sumsub.Client
	service   *kyc.Service
)

var rootCmd = &cobra.Command{
	Use:               "kyc-client",
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	Short:             "Sumsub KYC session link CLI",
	Long: `Issue Sumsub verification session links from the command line.

Configuration is read from the environment (SUMSUB_APP_TOKEN, SUMSUB_SECRET_KEY, SUMSUB_LEVEL_NAME etc).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.NewConfig()
		if err != nil {
			log.Printf("failed to load configuration: %v", err.Error())
			return err
		}

		appLogger = logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)
		client = cfg.SumsubClient(appLogger)
		service = kyc.NewService(client, cfg.SumsubLevelName, kyc.NewLogReporter(appLogger), appLogger)
		return nil
	},
}

func Execute() {
	v := version.Get()
	rootCmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(regenerateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(idDocCmd)
}
