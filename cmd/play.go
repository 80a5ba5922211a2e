package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hollowbeak/murmur/internal/config"
	"github.com/hollowbeak/murmur/internal/focus"
	"github.com/hollowbeak/murmur/internal/manager"
	"github.com/hollowbeak/murmur/internal/preset"
	"github.com/hollowbeak/murmur/internal/sound"
)

var (
	playPreset   string
	playLogFile  string
	playLogLevel string
)

// playCmd represents the play command
var playCmd = &cobra.Command{
	Use:   "play [sound[=volume]...]",
	Short: "Play an ambient sound mix in the foreground",
	Long: `Play an ambient sound mix in the foreground until interrupted.

Sounds are given as positional arguments, optionally with a volume:

  murmur play rain thunder=0.6 wind=0.3

or loaded from a saved preset:

  murmur play --preset rainy-night

The mix fades out gracefully on SIGINT/SIGTERM; a second signal forces
an immediate exit.`,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringVar(&playPreset, "preset", "", "Play a saved preset instead of positional sounds")
	playCmd.Flags().StringVar(&playLogFile, "log-file", "", "Log file path (default: stderr)")
	playCmd.Flags().StringVar(&playLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(playLogFile, playLogLevel)

	volumes, err := resolveMix(playPreset, args)
	if err != nil {
		return err
	}
	if len(volumes) == 0 {
		return fmt.Errorf("nothing to play: give sounds as arguments or use --preset")
	}

	m := newManager(cfg, nil, &logEvents{logger: logger}, logger)

	if err := m.SetVolume(cfg.MasterVolume); err != nil {
		return fmt.Errorf("invalid master_volume in config: %w", err)
	}
	if err := m.PlayPreset(volumes); err != nil {
		return fmt.Errorf("failed to start mix: %w", err)
	}

	logger.Info().Int("sounds", len(volumes)).Msg("Mix started")

	// Handle first signal gracefully, second signal forces exit
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	logger.Info().Msg("Shutdown signal received, fading out")
	go func() {
		<-sigChan
		logger.Warn().Msg("Second shutdown signal received, forcing exit")
		os.Exit(1)
	}()

	m.Stop(false)

	// Give the fade-out a bounded window to finish
	deadline := time.Now().Add(time.Duration(cfg.FadeOutMillis)*time.Millisecond + 2*time.Second)
	for m.State() != manager.StateStopped && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	logger.Info().Msg("Mix stopped")
	return nil
}

// newManager wires a manager with the simulated playback engine
func newManager(cfg *config.Config, arbiter *focus.Arbiter, l manager.Listener, logger zerolog.Logger) *manager.Manager {
	mcfg := manager.Config{
		FadeInDuration:    time.Duration(cfg.FadeInMillis) * time.Millisecond,
		FadeOutDuration:   time.Duration(cfg.FadeOutMillis) * time.Millisecond,
		AudioBitrate:      cfg.AudioBitrate,
		AudioFocusEnabled: cfg.AudioFocusEnabled,
	}
	m := manager.New(mcfg, sound.NewSimulatedFactory(logger), arbiter, l, logger)
	m.SetPremiumSegmentsEnabled(cfg.PremiumSegments)
	return m
}

// resolveMix turns either a saved preset name or "id[=volume]" args into a
// sound-to-volume map
func resolveMix(presetName string, args []string) (map[string]float64, error) {
	if presetName != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("--preset and positional sounds are mutually exclusive")
		}
		store, err := openPresetStore()
		if err != nil {
			return nil, err
		}
		defer store.Close()

		p, err := store.Get(context.Background(), presetName)
		if err != nil {
			return nil, err
		}
		return p.Sounds, nil
	}

	return parseSoundArgs(args)
}

// parseSoundArgs parses "id" or "id=volume" arguments
func parseSoundArgs(args []string) (map[string]float64, error) {
	volumes := make(map[string]float64, len(args))
	for _, arg := range args {
		id, volStr, found := strings.Cut(arg, "=")
		if id == "" {
			return nil, fmt.Errorf("invalid sound argument %q", arg)
		}
		vol := 1.0
		if found {
			v, err := strconv.ParseFloat(volStr, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid volume in %q: %w", arg, err)
			}
			vol = v
		}
		volumes[id] = vol
	}
	return volumes, nil
}

// openPresetStore opens the preset database in the data directory
func openPresetStore() (*preset.Store, error) {
	dataDir, err := config.GetDataDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get data directory: %w", err)
	}
	store, err := preset.NewStore(filepath.Join(dataDir, "presets.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open preset store: %w", err)
	}
	return store, nil
}

// logEvents logs manager events; used when no interactive UI is attached
type logEvents struct {
	logger zerolog.Logger
}

func (l *logEvents) OnManagerStateChanged(state manager.State) {
	l.logger.Info().Stringer("state", state).Msg("Mix state changed")
}

func (l *logEvents) OnManagerVolumeChanged(volume float64) {
	l.logger.Info().Float64("volume", volume).Msg("Master volume changed")
}

func (l *logEvents) OnSoundStateChanged(soundID string, state sound.State) {
	l.logger.Debug().Str("sound", soundID).Stringer("state", state).Msg("Sound state changed")
}

func (l *logEvents) OnSoundVolumeChanged(soundID string, volume float64) {
	l.logger.Debug().Str("sound", soundID).Float64("volume", volume).Msg("Sound volume changed")
}

// setupLogger creates a logger with the specified configuration
func setupLogger(logFile, logLevel string) zerolog.Logger {
	// Parse log level
	level := zerolog.InfoLevel
	switch logLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	// Set up output
	var output *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			output = os.Stderr
		} else {
			output = f
		}
	} else {
		output = os.Stderr
	}

	// Create logger
	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	// Use pretty console output if logging to stderr
	if output == os.Stderr {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return logger
}
