package msgcat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
)

func TestEmbeddedRender(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("lobby.made", map[string]any{"Name": "철수", "Code": "OM-ABC123", "Prefix": "!"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(got, "OM-ABC123") || !strings.Contains(got, "!오목 참가") {
		t.Fatalf("unexpected text: %q", got)
	}
	if _, err := c.Render("lobby.made", map[string]any{"Name": "철수"}); err == nil {
		t.Fatalf("missing field should fail")
	}
	if _, err := c.Render("no.such.key", nil); err == nil {
		t.Fatalf("unknown key should fail")
	}
}

func TestEveryRejectionReasonHasText(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	reasons := []string{
		gomoku.ReasonNotSeated, gomoku.ReasonWrongStatus, gomoku.ReasonAlreadyReady,
		gomoku.ReasonNoPosition, gomoku.ReasonOutOfBounds, gomoku.ReasonOccupied,
		gomoku.ReasonNotYourTurn, gomoku.ReasonGameOver, gomoku.ReasonProposalPending,
		gomoku.ReasonNoProposal, gomoku.ReasonOwnProposal, gomoku.ReasonNothingToUndo,
		gomoku.ReasonNoApplicableRule,
	}
	for _, r := range reasons {
		if !c.Has("reason." + r) {
			t.Errorf("missing reason.%s", r)
		}
	}
	for _, e := range []gomoku.EndReason{gomoku.EndWin, gomoku.EndDraw, gomoku.EndSurrender, gomoku.EndTimeout} {
		if !c.Has("end." + string(e)) {
			t.Errorf("missing end.%s", e)
		}
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("ready:\n  marked: \"{{.Name}} ready\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("ready.marked", map[string]any{"Name": "bob"})
	if err != nil || got != "bob ready" {
		t.Fatalf("override not applied: %q %v", got, err)
	}
	// Embedded keys not overridden stay available.
	if !c.Has("help.text") {
		t.Fatalf("embedded key lost")
	}

	if err := os.WriteFile(filepath.Join(dir, "b.yml"), []byte("ready:\n  marked: other\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(dir); err == nil || !strings.Contains(err.Error(), "duplicate override key") {
		t.Fatalf("duplicate keys should fail, got %v", err)
	}
}

func TestRejectsNonStringLeaves(t *testing.T) {
	if _, err := parseYAMLToFlat([]byte("a:\n  b: 3\n")); err == nil {
		t.Fatalf("numeric leaf should fail")
	}
}
