package main

import (
	"fmt"
	"strings"

	"github.com/chazu/lathe/pkg/bottle"
	"github.com/chazu/lathe/pkg/engine"
	"github.com/spf13/cobra"
)

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "List the script builtins and their keywords",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		for _, name := range engine.Builtins() {
			kws := engine.Keywords(name)
			for i, kw := range kws {
				kws[i] = ":" + kw
			}
			fmt.Fprintf(w, "(%s %s)\n", name, strings.Join(kws, " "))
		}
		d := bottle.Default()
		fmt.Fprintln(w)
		fmt.Fprintf(w, "defaults: %+v\n", d)
	},
}

func init() {
	rootCmd.AddCommand(paramsCmd)
}
