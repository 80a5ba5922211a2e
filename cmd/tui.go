package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hollowbeak/murmur/internal/config"
	"github.com/hollowbeak/murmur/internal/focus"
	"github.com/hollowbeak/murmur/internal/tui"
)

var tuiPreset string

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui [sound[=volume]...]",
	Short: "Drive an ambient mix from a terminal UI",
	Long: `Drive an ambient mix from a terminal UI.

Shows the aggregate mix state and a per-sound table with live states and
volumes. The mix can be paused, resumed, and stopped, and a focus loss to
another application can be simulated to watch the mix duck and recover.

Press 'q' to quit.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().StringVar(&tuiPreset, "preset", "", "Start with a saved preset")
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// The terminal owns the screen; keep the log quiet
	logger := zerolog.Nop()

	volumes, err := resolveMix(tuiPreset, args)
	if err != nil {
		return err
	}
	if len(volumes) == 0 {
		return fmt.Errorf("nothing to play: give sounds as arguments or use --preset")
	}

	arbiter := focus.NewArbiter(logger)
	m := newManager(cfg, arbiter, nil, logger)

	if err := m.SetVolume(cfg.MasterVolume); err != nil {
		return fmt.Errorf("invalid master_volume in config: %w", err)
	}
	if err := m.PlayPreset(volumes); err != nil {
		return fmt.Errorf("failed to start mix: %w", err)
	}

	app := tui.New(m, arbiter, tui.DefaultConfig())
	if err := app.Run(context.Background()); err != nil {
		return err
	}

	m.Stop(true)
	return nil
}
