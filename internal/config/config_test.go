package config

import (
	"strings"
	"testing"
	"time"

	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("IRIS_BASE_URL", "http://iris.local:3000")
	t.Setenv("IRIS_WS_URL", "ws://iris.local:3000/ws")
	t.Setenv("BOT_PREFIX", "!")
	t.Setenv("REDIS_URL", "redis://127.0.0.1:6379/0")
	t.Setenv("ARCHIVE_DRIVER", "memory")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BoardSize != 15 || cfg.TurnTimeout != 60*time.Second || cfg.RoomTTL != 24*time.Hour {
		t.Fatalf("defaults: size=%d timeout=%v ttl=%v", cfg.BoardSize, cfg.TurnTimeout, cfg.RoomTTL)
	}
	if cfg.HistoryLimit != 10 || cfg.Mode != gomoku.ModeCasual || cfg.EgressMode != "auto" {
		t.Fatalf("defaults: limit=%d mode=%s egress=%s", cfg.HistoryLimit, cfg.Mode, cfg.EgressMode)
	}
	if !cfg.RoomAllowed("anything") {
		t.Fatalf("empty allow-list should admit every room")
	}
}

func TestLoadNormalizes(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ALLOWED_ROOMS", " 111 , ,222,")
	t.Setenv("OMOK_MODE", "ranked")
	t.Setenv("EGRESS_MODE", "carrier-pigeon")
	t.Setenv("OMOK_TURN_TIMEOUT", "0s")
	t.Setenv("ARCHIVE_DRIVER", " SQLite ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if strings.Join(cfg.AllowedRooms, "|") != "111|222" {
		t.Fatalf("rooms=%q", cfg.AllowedRooms)
	}
	if !cfg.RoomAllowed("222") || cfg.RoomAllowed("333") {
		t.Fatalf("allow-list not applied")
	}
	if cfg.Mode != gomoku.ModeRanked || cfg.EgressMode != "auto" || cfg.TurnTimeout != 0 || cfg.ArchiveDriver != "sqlite" {
		t.Fatalf("mode=%s egress=%s timeout=%v driver=%s", cfg.Mode, cfg.EgressMode, cfg.TurnTimeout, cfg.ArchiveDriver)
	}
}

func TestLoadRejects(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
	}{
		{"missing prefix", "BOT_PREFIX", ""},
		{"tiny board", "OMOK_BOARD_SIZE", "3"},
		{"unknown driver", "ARCHIVE_DRIVER", "mongo"},
		{"unknown mode", "OMOK_MODE", "blitz"},
		{"postgres without dsn", "ARCHIVE_DRIVER", "postgres"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv("DATABASE_URL", "")
			t.Setenv(tc.key, tc.val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.val)
			}
		})
	}
}
