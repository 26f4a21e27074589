package obslog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRoomAddsRoomField(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(nil) })

	Room(" 42 ").Info("room_action")
	entries := logs.FilterMessage("room_action").All()
	if len(entries) != 1 {
		t.Fatalf("entries=%d", len(entries))
	}
	if got := entries[0].ContextMap()["room_id"]; got != "42" {
		t.Fatalf("room_id=%v", got)
	}
}

func TestInitWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "omok.log")
	if err := Init(Config{Level: "debug", ToFile: true, Format: "json", FilePath: path}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { Set(nil) })

	L().Debug("boot_probe", zap.String("k", "v"))
	_ = L().Sync()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), `"msg":"boot_probe"`) {
		t.Fatalf("log file missing entry: %s", raw)
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("WARNING") != zap.WarnLevel || parseLevel("nonsense") != zap.InfoLevel {
		t.Fatalf("unexpected level mapping")
	}
}
