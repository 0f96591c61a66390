package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/chazu/lathe/pkg/logging"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	kernelName string
	meshCells  int
	steps      int
)

var rootCmd = &cobra.Command{
	Use:   "lathe",
	Short: "Generate threaded bottles as solids of revolution",
	Long: `lathe builds a bottle and its screw cap from a parameter script.
Profiles are filleted, offset into walls, revolved around the Y axis and
merged with swept threads. Output can be written as mesh documents or STL,
and cross sections as SVG or DXF.

A script is a zygomys program calling the builtins listed by "lathe params".
Without a script the stock bottle is built.`,
	Version: "0.1.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log build stages to stderr")
	rootCmd.PersistentFlags().StringVarP(&kernelName, "kernel", "k", kernelShell, "Revolution backend: shell, lathe or sdf")
	rootCmd.PersistentFlags().IntVar(&meshCells, "cells", 0, "Marching cubes resolution for the sdf kernel")
	rootCmd.PersistentFlags().IntVarP(&steps, "steps", "s", 0, "Override the script's revolution step count")
}

// newApp builds an App from the persistent flags.
func newApp() (*App, error) {
	k, err := kernelByName(kernelName, meshCells)
	if err != nil {
		return nil, err
	}
	app := NewApp(k)
	app.steps = steps
	return app, nil
}

// readScript returns the script named by args, or an empty script.
func readScript(args []string) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return string(data), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
