package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/chazu/lathe/pkg/export"
	"github.com/chazu/lathe/pkg/logging"
	"github.com/chazu/lathe/pkg/watcher"
	"github.com/spf13/cobra"
)

var (
	watchOut      string
	watchFormat   string
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch script",
	Short: "Rebuild whenever the script changes",
	Long: `Build once, then rebuild and rewrite the output every time the script is
saved. Script errors are reported and the previous output is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOut, "out", "o", "bottle.stl", "Output file")
	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", "", "Output format: json, msgpack, cbor or stl")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 200*time.Millisecond, "Quiet time before rebuilding")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(watchOut, watchFormat)
	if err != nil {
		return err
	}
	out, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	rebuild := func(string) {
		model, err := buildModel(stderr, args)
		if err == nil {
			err = export.Save(watchOut, format, export.NewDocument(model))
		}
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", time.Now().Format(time.TimeOnly), err)
			return
		}
		fmt.Fprintf(out, "%s: wrote %s\n", time.Now().Format(time.TimeOnly), watchOut)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return watchScript(ctx, args[0], watchDebounce, rebuild, out)
}

// watchScript runs rebuild once and then on every change to path until
// ctx is done.
func watchScript(ctx context.Context, path string, debounce time.Duration, rebuild func(string), out io.Writer) error {
	fw, err := watcher.NewFileWatcher(debounce, watcherLogger())
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Watch([]string{path}, rebuild); err != nil {
		return err
	}
	rebuild(path)
	fw.Start(ctx)
	fmt.Fprintf(out, "watching %s (Ctrl+C to stop)\n", path)

	<-ctx.Done()
	return nil
}

func watcherLogger() *slog.Logger {
	return logging.Logger().With("component", "watcher")
}
