package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sbs-go/internal/app"
	"sbs-go/internal/config"
	"sbs-go/internal/model"
)

// Exit codes by error kind.
const (
	exitError      = 1
	exitValidation = 2
	exitNotFound   = 3
	exitForbidden  = 4
	exitConflict   = 5
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrInvalidSpan),
		errors.Is(err, model.ErrEmptyAnnotationText),
		errors.Is(err, model.ErrInvalidTransition):
		return exitValidation
	case errors.Is(err, model.ErrNotFound):
		return exitNotFound
	case errors.Is(err, model.ErrForbidden):
		return exitForbidden
	case errors.Is(err, model.ErrConflict):
		return exitConflict
	}
	return exitError
}

// loadConfig reads the config file and applies the --user override.
func loadConfig(cmd *cobra.Command) (*config.Config, app.Defaults, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, defaults, fmt.Errorf("getting defaults: %w", err)
	}
	cfg, err := config.ReadFromFile(defaults.ConfigPath)
	if err != nil {
		return nil, defaults, fmt.Errorf("reading config: %w", err)
	}
	if user, _ := cmd.Flags().GetString("user"); user != "" {
		cfg.UserID = user
	}
	return cfg, defaults, nil
}

// withApp creates an SBSApp for operation, runs fn and closes the app,
// recording the outcome of fn in the operation log.
func withApp(cmd *cobra.Command, operation string, fn func(a *app.SBSApp) error) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := app.NewSBSApp(cfg, operation)
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}

	runErr := fn(a)
	a.Fail(runErr)
	if err := a.Close(); err != nil && runErr == nil {
		return err
	}
	return runErr
}

var rootCmd = &cobra.Command{
	Use:          "sbs",
	Short:        "Side-by-side translation workspace",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("user", "", "Act as this user instead of the configured one")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(docCmd)
	rootCmd.AddCommand(segCmd)
	rootCmd.AddCommand(tmCmd)
}
