package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
)

type AppConfig struct {
	IrisBaseURL string `env:"IRIS_BASE_URL,required,notEmpty"`
	IrisWSURL   string `env:"IRIS_WS_URL,required,notEmpty"`

	BotPrefix string `env:"BOT_PREFIX,required,notEmpty"`

	XUserID    string `env:"X_USER_ID"`
	XUserEmail string `env:"X_USER_EMAIL"`
	XSessionID string `env:"X_SESSION_ID"`

	RedisURL    string `env:"REDIS_URL,required,notEmpty"`
	DatabaseURL string `env:"DATABASE_URL"`

	// ArchiveDriver selects the finished-game sink: postgres, sqlite or memory.
	ArchiveDriver     string `env:"ARCHIVE_DRIVER" envDefault:"postgres"`
	ArchiveSQLitePath string `env:"ARCHIVE_SQLITE_PATH" envDefault:"data/omok.db"`

	AllowedRooms []string `env:"ALLOWED_ROOMS" envSeparator:","`

	BoardSize     int           `env:"OMOK_BOARD_SIZE" envDefault:"15"`
	TurnTimeout   time.Duration `env:"OMOK_TURN_TIMEOUT" envDefault:"60s"`
	RoomTTL       time.Duration `env:"OMOK_ROOM_TTL" envDefault:"24h"`
	HistoryLimit  int           `env:"OMOK_HISTORY_LIMIT" envDefault:"10"`
	Mode          gomoku.Mode   `env:"OMOK_MODE" envDefault:"CASUAL"`
	DrainInterval time.Duration `env:"OMOK_ARCHIVE_DRAIN_INTERVAL" envDefault:"5s"`

	EgressMode   string `env:"EGRESS_MODE" envDefault:"auto"`
	EgressDryRun bool   `env:"EGRESS_DRYRUN"`

	MsgTemplateDir string `env:"MSG_TEMPLATE_DIR"`
}

const (
	minBoardSize = 5
	maxBoardSize = 19
)

func Load() (*AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) normalize() error {
	c.IrisBaseURL = strings.TrimSpace(c.IrisBaseURL)
	c.IrisWSURL = strings.TrimSpace(c.IrisWSURL)
	c.BotPrefix = strings.TrimSpace(c.BotPrefix)
	c.RedisURL = strings.TrimSpace(c.RedisURL)
	c.DatabaseURL = strings.TrimSpace(c.DatabaseURL)

	rooms := c.AllowedRooms[:0]
	for _, p := range c.AllowedRooms {
		if s := strings.TrimSpace(p); s != "" {
			rooms = append(rooms, s)
		}
	}
	c.AllowedRooms = rooms

	if c.BoardSize < minBoardSize || c.BoardSize > maxBoardSize {
		return fmt.Errorf("OMOK_BOARD_SIZE must be between %d and %d, got %d", minBoardSize, maxBoardSize, c.BoardSize)
	}
	if c.TurnTimeout < 0 {
		c.TurnTimeout = 0
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 10
	}
	if c.DrainInterval <= 0 {
		c.DrainInterval = 5 * time.Second
	}

	c.Mode = gomoku.Mode(strings.ToUpper(strings.TrimSpace(string(c.Mode))))
	if c.Mode != gomoku.ModeCasual && c.Mode != gomoku.ModeRanked {
		return fmt.Errorf("OMOK_MODE must be CASUAL or RANKED, got %q", c.Mode)
	}

	c.ArchiveDriver = strings.ToLower(strings.TrimSpace(c.ArchiveDriver))
	switch c.ArchiveDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for ARCHIVE_DRIVER=postgres")
		}
	case "sqlite", "memory":
	default:
		return fmt.Errorf("unsupported ARCHIVE_DRIVER %q", c.ArchiveDriver)
	}

	c.EgressMode = strings.ToLower(strings.TrimSpace(c.EgressMode))
	if c.EgressMode != "http" && c.EgressMode != "ws" && c.EgressMode != "auto" {
		c.EgressMode = "auto"
	}
	return nil
}

// RoomAllowed reports whether the bot should answer in room. An empty
// allow-list admits every room.
func (c *AppConfig) RoomAllowed(room string) bool {
	if len(c.AllowedRooms) == 0 {
		return true
	}
	room = strings.TrimSpace(room)
	for _, r := range c.AllowedRooms {
		if r == room {
			return true
		}
	}
	return false
}
