// Package cmd implements the CLI surface contracted by spec §6: a thin
// Cobra wrapper around pkg/translate, out of the core's scope itself but
// wired the way the teacher (go-corset) wires its own pkg/cmd — a
// package-level rootCmd, subcommands self-registering via init(), and
// GetFlag/GetString helpers in util.go.
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled in by the release build via -ldflags; empty when
// built with a plain `go build`/`go run`.
var Version string

var rootCmd = &cobra.Command{
	Use:   "svdgen",
	Short: "Translates a CMSIS-SVD device description into a typed peripheral-access library.",
	Long: "svdgen consumes a semantically validated CMSIS-SVD device description and emits a\n" +
		"typed peripheral-access library that statically enforces register access mode,\n" +
		"bit-field width, reset value, and legal symbolic field values.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			printVersion()
			return
		}

		_ = cmd.Help()
	},
}

// Execute runs the root command; it is called once from cmd/svdgen/main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Print("svdgen ")

	switch {
	case Version != "":
		fmt.Print(Version)
	default:
		if info, ok := debug.ReadBuildInfo(); ok {
			fmt.Print(info.Main.Version)
		} else {
			fmt.Print("(unknown version)")
		}
	}

	fmt.Println()
}

func init() {
	rootCmd.Flags().Bool("version", false, "report the version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().Bool("strict", false, "promote SVD validation warnings to errors")

	cobra.OnInitialize(func() {
		if v, _ := rootCmd.PersistentFlags().GetBool("verbose"); v {
			log.SetLevel(log.DebugLevel)
		}
	})
}
