package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Wolfe-Services/Tachikoma-sub007/internal/app"
	"github.com/Wolfe-Services/Tachikoma-sub007/internal/settings"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings document",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(_ context.Context, a *app.App) error {
			state := a.Store().Get()

			raw, err := json.MarshalIndent(state.Document, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(raw))

			cmd.Printf("\nversion: %d  provenance: %s  dirty: %v\n",
				state.Meta.Version, state.Meta.Provenance, state.Dirty)
			for _, f := range state.Findings {
				cmd.Printf("  [%s] %s: %s\n", f.Severity, f.Path, f.Message)
			}
			return nil
		})
	},
}

var getCmd = &cobra.Command{
	Use:   "get <category.field>",
	Short: "Print one setting value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(_ context.Context, a *app.App) error {
			v, ok := a.Store().GetValue(args[0])
			if !ok {
				return fmt.Errorf("unknown setting %q", args[0])
			}
			cmd.Printf("%v\n", v)
			return nil
		})
	},
}

var setCmd = &cobra.Command{
	Use:   "set <category.field> <value>",
	Short: "Update one setting and save",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, field, ok := strings.Cut(args[0], ".")
		if !ok {
			return fmt.Errorf("path must be category.field, got %q", args[0])
		}

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := a.Store().UpdateField(category, field, parseValue(args[1])); err != nil {
				return err
			}

			for _, f := range a.Store().Findings() {
				cmd.Printf("  [%s] %s: %s\n", f.Severity, f.Path, f.Message)
			}
			return a.Coordinator().Save(ctx)
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset [category]",
	Short: "Reset one category, or everything, to defaults",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if len(args) == 1 {
				if err := a.Store().ResetCategory(args[0]); err != nil {
					return err
				}
			} else {
				a.Store().ResetAll()
			}
			return a.Coordinator().Save(ctx)
		})
	},
}

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Persist unsaved changes now",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if !a.Store().Dirty() {
				cmd.Println("nothing to save")
				return nil
			}
			if err := a.Coordinator().Save(ctx); err != nil {
				var fe *settings.FindingsError
				if errors.As(err, &fe) {
					for _, f := range fe.Findings {
						cmd.Printf("  [%s] %s: %s\n", f.Severity, f.Path, f.Message)
					}
				}
				return err
			}
			cmd.Println("settings saved")
			return nil
		})
	},
}

var discardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Revert unsaved changes to the last-saved snapshot",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(_ context.Context, a *app.App) error {
			a.Store().Discard()
			cmd.Println("unsaved changes discarded")
			return nil
		})
	},
}

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the current settings as a portable snapshot",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(_ context.Context, a *app.App) error {
			blob, err := a.Coordinator().ExportSnapshot()
			if err != nil {
				return err
			}
			if exportOutput == "" || exportOutput == "-" {
				cmd.Println(string(blob))
				return nil
			}
			return os.WriteFile(exportOutput, blob, 0600)
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a settings snapshot and save it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		blob, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := a.Coordinator().ImportSnapshot(ctx, blob); err != nil {
				var fe *settings.FindingsError
				if errors.As(err, &fe) {
					for _, f := range fe.Findings {
						cmd.Printf("  [%s] %s: %s\n", f.Severity, f.Path, f.Message)
					}
				}
				return err
			}
			cmd.Println("settings imported")
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write the snapshot to a file instead of stdout")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(discardCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

// parseValue converts a CLI argument into the most specific JSON-compatible
// type. Numbers are tried before booleans so "1" stays numeric.
func parseValue(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if s == "true" || s == "false" {
		return s == "true"
	}
	return s
}
