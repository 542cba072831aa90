package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/neerajchowdary889/doctx/configs"
	"github.com/neerajchowdary889/doctx/internal/config"
	"github.com/neerajchowdary889/doctx/internal/ui"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter .doctx.yaml into the document root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, opts, force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")
	return cmd
}

func runInit(cmd *cobra.Command, opts *rootOptions, force bool) error {
	r := ui.NewRenderer(cmd.OutOrStdout(), opts.noColor)

	for _, name := range config.ProjectFileNames {
		existing := filepath.Join(opts.root, name)
		if _, err := os.Stat(existing); err == nil && !force {
			r.Warning(fmt.Sprintf("%s already exists (use --force to overwrite)", existing))
			return nil
		}
	}

	path := filepath.Join(opts.root, config.ProjectFileNames[0])
	if err := os.WriteFile(path, []byte(configs.ProjectConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	r.Success(fmt.Sprintf("wrote %s", path))
	return nil
}
