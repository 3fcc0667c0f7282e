package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/svdgen/svdgen/pkg/translate"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Translate an SVD device description into a peripheral-access library.",
	RunE: func(cmd *cobra.Command, args []string) error {
		input := GetString(cmd, "input")
		if input == "" {
			return fmt.Errorf("--input is required")
		}

		outDir := GetString(cmd, "output-dir")
		if outDir == "" {
			outDir = "."
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

		for _, f := range result.Bundle.Files() {
			dst := filepath.Join(outDir, f.Path)

			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return err
			}

			if err := os.WriteFile(dst, []byte(f.Contents), 0o644); err != nil {
				return err
			}
		}

		if result.LinkerFragment != "" {
			if err := os.WriteFile(filepath.Join(outDir, "device.x"), []byte(result.LinkerFragment), 0o644); err != nil {
				return err
			}
		}

		if result.BuildScript != "" {
			if err := os.WriteFile(filepath.Join(outDir, "build.rs"), []byte(result.BuildScript), 0o644); err != nil {
				return err
			}
		}

		log.WithField("files", len(result.Bundle.Files())).WithField("warnings", len(result.Warnings)).
			Info("generation complete")

		return nil
	},
}

func init() {
	generateCmd.Flags().StringP("input", "i", "", "input SVD/YAML/JSON file")
	generateCmd.Flags().String("output-dir", ".", "directory the generated bundle is written to")
	addConfigFlags(generateCmd)
	rootCmd.AddCommand(generateCmd)
}
