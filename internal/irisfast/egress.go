package irisfast

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Egress sends replies over HTTP or WebSocket.
type Egress interface {
	SendText(ctx context.Context, room, message string) error
	SendImage(ctx context.Context, room, imageBase64 string) error
}

const (
	ModeHTTP = "http"
	ModeWS   = "ws"
	ModeAuto = "auto"
)

// replier is the part of Client the HTTP egress needs.
type replier interface {
	SendMessage(ctx context.Context, room, message string) error
	SendImage(ctx context.Context, room, imageBase64 string) error
}

// frameWriter is the part of WebSocket the WS egress needs.
type frameWriter interface {
	Connected() bool
	WriteJSON(ctx context.Context, v any) error
}

// NewEgress picks the transport. auto prefers WS while connected and falls
// back to HTTP once per message. With dryrun nothing leaves the process.
func NewEgress(mode string, dryrun bool, c *Client, ws *WebSocket, logger *zap.Logger) Egress {
	var r replier
	if c != nil {
		r = c
	}
	var w frameWriter
	if ws != nil {
		w = ws
	}
	return newEgress(mode, dryrun, r, w, logger)
}

func newEgress(mode string, dryrun bool, r replier, w frameWriter, logger *zap.Logger) Egress {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dryrun {
		return &dryEgress{mode: mode, logger: logger}
	}
	switch mode {
	case ModeWS:
		return &wsEgress{ws: w}
	case ModeAuto:
		return &autoEgress{ws: &wsEgress{ws: w}, http: &httpEgress{c: r}, logger: logger}
	default:
		return &httpEgress{c: r}
	}
}

type httpEgress struct{ c replier }

func (h *httpEgress) SendText(ctx context.Context, room, message string) error {
	if h.c == nil {
		return errors.New("http egress not available")
	}
	return h.c.SendMessage(ctx, room, message)
}

func (h *httpEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
	if h.c == nil {
		return errors.New("http egress not available")
	}
	return h.c.SendImage(ctx, room, imageBase64)
}

type wsEgress struct{ ws frameWriter }

func (w *wsEgress) available() bool { return w.ws != nil && w.ws.Connected() }

func (w *wsEgress) SendText(ctx context.Context, room, message string) error {
	return w.send(ctx, ReplyRequest{Type: "text", Room: room, Data: message})
}

func (w *wsEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
	return w.send(ctx, ReplyRequest{Type: "image", Room: room, Data: imageBase64})
}

func (w *wsEgress) send(ctx context.Context, req ReplyRequest) error {
	if w.ws == nil {
		return errors.New("ws egress not available")
	}
	if err := w.ws.WriteJSON(ctx, &req); err != nil {
		return fmt.Errorf("ws reply: %w", err)
	}
	return nil
}

type autoEgress struct {
	ws     *wsEgress
	http   *httpEgress
	logger *zap.Logger
}

func (a *autoEgress) SendText(ctx context.Context, room, message string) error {
	if a.ws.available() {
		err := a.ws.SendText(ctx, room, message)
		if err == nil {
			return nil
		}
		a.logger.Warn("egress_fallback", zap.String("type", "text"), zap.String("room", room), zap.Error(err))
	}
	return a.http.SendText(ctx, room, message)
}

func (a *autoEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
	if a.ws.available() {
		err := a.ws.SendImage(ctx, room, imageBase64)
		if err == nil {
			return nil
		}
		a.logger.Warn("egress_fallback", zap.String("type", "image"), zap.String("room", room), zap.Error(err))
	}
	return a.http.SendImage(ctx, room, imageBase64)
}

type dryEgress struct {
	mode   string
	logger *zap.Logger
}

func (d *dryEgress) SendText(_ context.Context, room, message string) error {
	d.logger.Info("egress_dryrun", zap.String("mode", d.mode), zap.String("type", "text"), zap.String("room", room), zap.Int("len", len(message)))
	return nil
}

func (d *dryEgress) SendImage(_ context.Context, room, imageBase64 string) error {
	d.logger.Info("egress_dryrun", zap.String("mode", d.mode), zap.String("type", "image"), zap.String("room", room), zap.Int("len", len(imageBase64)))
	return nil
}
