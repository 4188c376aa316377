package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/bugbench/internal/config"
)

func newConfigCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage bugbench configuration",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Init(force)
			if err != nil {
				return fail(err)
			}
			fmt.Fprintf(e.stdout, "Config file created at %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Known keys: " + strings.Join(config.Keys(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile()
			if err != nil {
				return fail(err)
			}
			if err := config.SetField(&cfg, args[0], args[1]); err != nil {
				return fail(err)
			}
			if err := config.Validate(cfg); err != nil {
				return fail(err)
			}
			if err := config.Save(cfg); err != nil {
				return fail(fmt.Errorf("saving config: %w", err))
			}
			fmt.Fprintf(e.stdout, "Set %s = %s\n", args[0], args[1])
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(nil)
			if err != nil {
				return fail(err)
			}
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fail(err)
			}
			fmt.Fprintln(e.stdout, string(data))
			return nil
		},
	}

	cmd.AddCommand(initCmd, setCmd, showCmd)
	return cmd
}
