package omokpresenter

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
	"github.com/park285/Omok-KakaoTalk-bot/internal/irisfast"
	"github.com/park285/Omok-KakaoTalk-bot/internal/render"
	"github.com/park285/Omok-KakaoTalk-bot/internal/room"
)

// Presenter delivers replies and board images to one or more chats.
type Presenter struct {
	egress   irisfast.Egress
	renderer render.BoardRenderer
}

func NewPresenter(egress irisfast.Egress, renderer render.BoardRenderer) *Presenter {
	return &Presenter{egress: egress, renderer: renderer}
}

func (p *Presenter) Text(ctx context.Context, chat, message string) error {
	if strings.TrimSpace(message) == "" {
		return nil
	}
	return p.egress.SendText(ctx, chat, message)
}

// Broadcast sends message to every chat and reports all failures.
func (p *Presenter) Broadcast(ctx context.Context, chats []string, message string) error {
	var errs []error
	for _, c := range chats {
		if err := p.Text(ctx, c, message); err != nil {
			errs = append(errs, fmt.Errorf("chat %s: %w", c, err))
		}
	}
	return errors.Join(errs...)
}

// Board sends message followed by the rendered board of r to each chat.
// Rooms without a board yet get the text only.
func (p *Presenter) Board(ctx context.Context, chats []string, r *room.Room, message string) error {
	if r == nil {
		return nil
	}
	img, err := p.BoardImage(ctx, r)
	if err != nil {
		return err
	}
	var errs []error
	for _, c := range chats {
		if err := p.Text(ctx, c, message); err != nil {
			errs = append(errs, fmt.Errorf("chat %s: %w", c, err))
			continue
		}
		if img == "" {
			continue
		}
		if err := p.egress.SendImage(ctx, c, img); err != nil {
			errs = append(errs, fmt.Errorf("chat %s image: %w", c, err))
		}
	}
	return errors.Join(errs...)
}

// BoardImage renders r's board as base64 PNG, or "" before the first start.
func (p *Presenter) BoardImage(ctx context.Context, r *room.Room) (string, error) {
	if p.renderer == nil || r == nil || r.Game == nil || r.Game.Snapshot == nil {
		return "", nil
	}
	g := r.Game
	png, err := p.renderer.RenderPNG(ctx, g.Snapshot.Board, render.RenderOptions{
		LastMove:  LastMove(g),
		HUDHeader: hudHeader(r),
		HUDTurn:   hudTurn(g),
		TurnColor: turnColor(g),
	})
	if err != nil {
		return "", fmt.Errorf("render board: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}

// The bundled font is ASCII only, so the HUD sticks to ids and English.
func hudHeader(r *room.Room) string {
	g := r.Game
	return fmt.Sprintf("ROUND %d  |  MOVES %d", max(g.GameCount, 1), g.MoveCount())
}

func hudTurn(g *gomoku.Game) string {
	switch g.Status {
	case gomoku.StatusPlaying:
		return g.Snapshot.CurrentTurn.String() + " TO PLAY"
	case gomoku.StatusFinished:
		switch w := g.Winner(); w {
		case gomoku.WinnerDraw:
			return "DRAW"
		default:
			return w.Color().String() + " WINS"
		}
	default:
		return "WAITING"
	}
}

func turnColor(g *gomoku.Game) gomoku.Color {
	if g.Status == gomoku.StatusPlaying {
		return g.Snapshot.CurrentTurn
	}
	if g.Status == gomoku.StatusFinished {
		return g.Winner().Color()
	}
	return gomoku.NoColor
}
