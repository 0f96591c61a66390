package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/ugorji/go/codec"
)

var renderOut string

var renderCmd = &cobra.Command{
	Use:   "render [script]",
	Short: "Write viewer mesh data as JSON",
	Long: `Evaluate the script and write the parts as indexed 16-bit meshes with a
color each, together with script errors and warnings, as one JSON object.
The object is written even when the script fails; the command then exits
with an error.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "-", `Output file, or "-" for stdout`)
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	source, err := readScript(args)
	if err != nil {
		return err
	}
	app, err := newApp()
	if err != nil {
		return err
	}
	result := app.Evaluate(source)

	if renderOut == "-" {
		err = writeResult(cmd.OutOrStdout(), result)
	} else {
		err = saveResult(renderOut, result)
	}
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", formatEvalError(w))
	}
	if n := len(result.Errors); n > 0 {
		for _, e := range result.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", formatEvalError(e))
		}
		return fmt.Errorf("render: %d error(s)", n)
	}
	return nil
}

func writeResult(w io.Writer, result EvalResult) error {
	if err := codec.NewEncoder(w, &codec.JsonHandle{}).Encode(result); err != nil {
		return fmt.Errorf("encode render result: %w", err)
	}
	return nil
}

func saveResult(path string, result EvalResult) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return writeResult(f, result)
}

func formatEvalError(e EvalErrorData) string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}
