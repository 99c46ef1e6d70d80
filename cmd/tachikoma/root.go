package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Wolfe-Services/Tachikoma-sub007/internal/app"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "tachikoma",
	Short: "Typed, validated, multi-destination settings engine",
	Long: `Tachikoma manages an application's user-configurable settings: it holds
the current value of every setting, validates mutations against declarative
rules, tracks unsaved changes, and reconciles state between a local cache
and the authoritative backend store.`,
	Version:       fmt.Sprintf("%s (%s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "runtime config file (default: XDG config dir)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// withApp builds the application, runs the initial load, invokes fn, and
// tears everything down.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	a, err := app.New(app.Options{ConfigPath: configPath})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if err := a.Init(ctx); err != nil {
		a.Logger().Warn("initial load degraded: %v", err)
	}
	return fn(ctx, a)
}
