package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/bugbench/internal/config"
	"github.com/dshills/bugbench/internal/providers"
)

const doctorPrompt = "Respond with exactly: ok"

func newProvidersCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "providers",
		Aliases: []string{"list-providers"},
		Short:   "List model providers and their credential status",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listProviders(e)
			return nil
		},
	}

	var model string
	doctorCmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that a model is configured and responding",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fail(runDoctor(cmd.Context(), e, model))
		},
	}
	doctorCmd.Flags().StringVar(&model, "model", "", `Model as "provider:model" (default: configured model)`)

	cmd.AddCommand(doctorCmd)
	return cmd
}

func listProviders(e *env) {
	reg := providers.NewRegistry(e.getenv, providers.Options{})
	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()

	fmt.Fprintln(e.stdout, "Available providers:")
	for _, name := range reg.Names() {
		b, _ := reg.Get(name)
		required := b.RequiredCredentials()
		missing := providers.MissingCredentials(b, e.getenv)

		status := ok("ready")
		if len(missing) > 0 {
			status = bad("missing " + strings.Join(missing, ", "))
		}
		needs := "none"
		if len(required) > 0 {
			needs = strings.Join(required, ", ")
		}
		fmt.Fprintf(e.stdout, "  %-10s %s (requires: %s)\n", name, status, needs)
	}
}

func runDoctor(ctx context.Context, e *env, model string) error {
	overrides := make(map[string]string)
	setString(overrides, "model", model)
	cfg, err := config.Load(overrides)
	if err != nil {
		return err
	}
	if cfg.Model == "" {
		return fmt.Errorf("%w: no model specified (use --model or set model in config)", config.ErrInvalid)
	}

	reg := providers.NewRegistry(e.getenv, providers.Options{MaxTokens: 10})
	name, modelName := providers.ParseModelSpec(cfg.Model)
	b, ok := reg.Get(name)
	if !ok {
		return fmt.Errorf("%w: provider %q not supported (available: %s)",
			config.ErrInvalid, name, strings.Join(reg.Names(), ", "))
	}
	if missing := providers.MissingCredentials(b, e.getenv); len(missing) > 0 {
		return fmt.Errorf("%w: missing environment variables for %s: %s",
			config.ErrInvalid, name, strings.Join(missing, ", "))
	}

	fmt.Fprintf(e.stdout, "Checking %s...\n", cfg.Model)
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	reply, err := b.Call(ctx, doctorPrompt, modelName)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Model, err)
	}
	if strings.TrimSpace(reply) == "" {
		return errors.New(cfg.Model + ": empty response")
	}
	fmt.Fprintf(e.stdout, "OK: %s is configured and responding\n", cfg.Model)
	return nil
}
