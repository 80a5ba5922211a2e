package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Fade lengths in milliseconds, applied to every player
	FadeInMillis  int
	FadeOutMillis int

	// Stream bitrate for players ("128k", "192k", "256k", "320k")
	AudioBitrate string

	// Whether playback yields to other holders of the audio output
	AudioFocusEnabled bool

	// Global volume multiplier in [0, 1]
	MasterVolume float64

	// Whether the entitlement-gated quality tier is enabled
	PremiumSegments bool
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Set defaults
	v.SetDefault("fade_in_ms", 1000)
	v.SetDefault("fade_out_ms", 1000)
	v.SetDefault("audio_bitrate", "128k")
	v.SetDefault("audio_focus_enabled", true)
	v.SetDefault("master_volume", 1.0)
	v.SetDefault("premium_segments", false)

	// Read config file (optional - don't fail if missing)
	_ = v.ReadInConfig()

	// Read from environment variables
	v.SetEnvPrefix("MURMUR")
	v.AutomaticEnv()

	// Map config to struct
	cfg := &Config{
		FadeInMillis:      v.GetInt("fade_in_ms"),
		FadeOutMillis:     v.GetInt("fade_out_ms"),
		AudioBitrate:      v.GetString("audio_bitrate"),
		AudioFocusEnabled: v.GetBool("audio_focus_enabled"),
		MasterVolume:      v.GetFloat64("master_volume"),
		PremiumSegments:   v.GetBool("premium_segments"),
	}

	return cfg, nil
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "murmur")

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}

// GetDataDir returns the directory holding the preset database,
// creating it if needed
func GetDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	dataDir := filepath.Join(homeDir, ".local", "share", "murmur")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	return dataDir, nil
}

// Save writes configuration to file
func (c *Config) Save() error {
	v := viper.New()

	// Set config file path
	configDir := getConfigDir()
	configFile := filepath.Join(configDir, "config.yaml")

	// Set values in viper
	v.Set("fade_in_ms", c.FadeInMillis)
	v.Set("fade_out_ms", c.FadeOutMillis)
	v.Set("audio_bitrate", c.AudioBitrate)
	v.Set("audio_focus_enabled", c.AudioFocusEnabled)
	v.Set("master_volume", c.MasterVolume)
	v.Set("premium_segments", c.PremiumSegments)

	// Write to file
	return v.WriteConfigAs(configFile)
}
