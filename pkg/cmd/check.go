package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/svdgen/svdgen/pkg/translate"
)

// checkCmd validates a device description without emitting any files: it
// runs the full pipeline but discards the resulting bundle, surfacing
// fatal diagnostics and warnings exactly as `generate` would (spec §6,
// "check (validate only, no emission)").
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate an SVD device description without emitting any files.",
	RunE: func(cmd *cobra.Command, args []string) error {
		input := GetString(cmd, "input")
		if input == "" {
			return fmt.Errorf("--input is required")
		}

		device, err := loadDevice(input)
		if err != nil {
			return err
		}

		cfg, err := buildConfig(cmd)
		if err != nil {
			return err
		}

		result, err := translate.Translate(device, cfg)
		if err != nil {
			return err
		}

		log.WithField("warnings", len(result.Warnings)).Info("check complete, no errors")

		return nil
	},
}

func init() {
	checkCmd.Flags().StringP("input", "i", "", "input SVD/YAML/JSON file")
	addConfigFlags(checkCmd)
	rootCmd.AddCommand(checkCmd)
}
