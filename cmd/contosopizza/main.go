// Command contosopizza runs the Contoso Pizza API and its maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/deppfellow/contosopizza/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	loggerPkg "github.com/deppfellow/contosopizza/internal/logger"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "contosopizza",
		Short:         "Contoso Pizza order management API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newMigrateCmd(), newEmailCmd())
	return root
}

// app is the configuration and logging every command except "migrate new"
// starts from.
type app struct {
	cfg           *config.Config
	logger        *zerolog.Logger
	loggerService *loggerPkg.LoggerService
}

func loadApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	loggerService := loggerPkg.NewLoggerService(cfg.Observability)
	logger := loggerPkg.NewLoggerWithService(cfg.Observability, loggerService)

	return &app{
		cfg:           cfg,
		logger:        &logger,
		loggerService: loggerService,
	}, nil
}

func (a *app) close() {
	a.loggerService.Shutdown()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
