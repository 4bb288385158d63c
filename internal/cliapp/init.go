package cliapp

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/wudi/faasrun/internal/scaffold"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new project",
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			prompt := &survey.Input{Message: "Project name:"}
			if err := survey.AskOne(prompt, &name, survey.WithValidator(survey.Required)); err != nil {
				return err
			}

			cwd, err := os.Getwd()
			if err != nil {
				return err
			}

			dir := cwd
			empty, err := dirIsEmpty(cwd)
			if err != nil {
				return err
			}
			if !empty {
				dir = filepath.Join(cwd, name)
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}

			if err := scaffold.Init(name, dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scaffolded %s in %s\n", name, dir)
			return nil
		},
	}
}

func dirIsEmpty(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}
