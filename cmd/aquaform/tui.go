package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"aquaform/internal/app"
	"aquaform/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive formulation workbench",
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	lib, err := openCatalog()
	if err != nil {
		return err
	}
	adv, err := openAdvisor(ctx)
	if err != nil {
		return err
	}

	opts := app.Options{Catalog: lib, Advisor: adv, Logger: logger}
	db, err := openStore()
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		opts.Store = db
	}

	model := tui.New(ctx, app.New(opts), logger)
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
