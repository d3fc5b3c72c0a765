package sys

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Token        string
	GuildID      string
	DatabasePath string
	OwnerIDs     []string
	Silent       bool

	Player PlayerConfig
}

// PlayerConfig holds the tunable player options exposed through the
// environment. Zero values are replaced with defaults in LoadConfig.
type PlayerConfig struct {
	AutoAddTracks      bool
	SearchResultsLimit int
	SynchronLoop       bool
	DefaultVolume      float64

	ProgressSize   int
	ProgressLine   string
	ProgressSlider string

	CollectorTimeout  time.Duration
	CollectorAttempts int
}

var GlobalConfig *Config

// Validate ensures the configuration is valid and meets requirements.
func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf(MsgConfigMissingToken)
	}

	// Basic Snowflake validation for GuildID if provided
	if c.GuildID != "" && (len(c.GuildID) < 17 || len(c.GuildID) > 20) {
		return fmt.Errorf("invalid GUILD_ID: must be a valid Snowflake")
	}

	if c.Player.DefaultVolume <= 0 {
		return fmt.Errorf("invalid DEFAULT_VOLUME: must be positive")
	}

	return nil
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	token := os.Getenv("DISCORD_TOKEN")
	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		folder := "."
		if info, err := os.Stat("data"); err == nil && info.IsDir() {
			folder = "./data"
		}
		dbPath = filepath.Join(folder, "playlists.db")
	}

	silent, _ := strconv.ParseBool(os.Getenv("SILENT"))

	ownerIDsStr := os.Getenv("OWNER_IDS")
	var ownerIDs []string
	if ownerIDsStr != "" {
		ownerIDs = strings.Split(ownerIDsStr, ",")
		for i := range ownerIDs {
			ownerIDs[i] = strings.TrimSpace(ownerIDs[i])
		}
	}

	cfg := &Config{
		Token:        token,
		GuildID:      os.Getenv("GUILD_ID"),
		DatabasePath: fmt.Sprintf("%s?_journal_mode=WAL&_timeout=5000", dbPath),
		OwnerIDs:     ownerIDs,
		Silent:       silent,
		Player:       loadPlayerConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Silent {
		SetSilentMode(true)
	}

	GlobalConfig = cfg
	return cfg, nil
}

func loadPlayerConfig() PlayerConfig {
	pc := PlayerConfig{
		AutoAddTracks:      true,
		SearchResultsLimit: 10,
		SynchronLoop:       true,
		DefaultVolume:      5,
		ProgressSize:       11,
		ProgressLine:       "▬",
		ProgressSlider:     "🔘",
		CollectorTimeout:   30 * time.Second,
		CollectorAttempts:  1,
	}

	if v, err := strconv.ParseBool(os.Getenv("AUTO_ADD_TRACKS")); err == nil {
		pc.AutoAddTracks = v
	}
	if v, err := strconv.Atoi(os.Getenv("SEARCH_RESULTS_LIMIT")); err == nil && v > 0 {
		pc.SearchResultsLimit = v
	}
	if v, err := strconv.ParseBool(os.Getenv("SYNCHRON_LOOP")); err == nil {
		pc.SynchronLoop = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("DEFAULT_VOLUME"), 64); err == nil && v > 0 {
		pc.DefaultVolume = v
	}
	if v, err := strconv.Atoi(os.Getenv("PROGRESS_BAR_SIZE")); err == nil && v > 0 {
		pc.ProgressSize = v
	}
	if v := os.Getenv("PROGRESS_BAR_LINE"); v != "" {
		pc.ProgressLine = v
	}
	if v := os.Getenv("PROGRESS_BAR_SLIDER"); v != "" {
		pc.ProgressSlider = v
	}
	if v, err := time.ParseDuration(os.Getenv("COLLECTOR_TIMEOUT")); err == nil && v > 0 {
		pc.CollectorTimeout = v
	}
	if v, err := strconv.Atoi(os.Getenv("COLLECTOR_ATTEMPTS")); err == nil && v > 0 {
		pc.CollectorAttempts = v
	}

	return pc
}
