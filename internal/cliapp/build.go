package cliapp

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wudi/faasrun/internal/apperrors"
	"github.com/wudi/faasrun/internal/config"
	"github.com/wudi/faasrun/internal/project"
)

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Bundle the current directory's project",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, err := config.Load(filepath.Join(dir, "config.yml"))
			if err != nil {
				return apperrors.BuildError(err)
			}
			buildDir := cfg.Build.Dir
			if !filepath.IsAbs(buildDir) {
				buildDir = filepath.Join(dir, buildDir)
			}
			result, err := project.Build(dir, buildDir)
			if err != nil {
				return apperrors.BuildError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.ArtifactPath)
			return nil
		},
	}
}
