// Command irischeck probes the Iris HTTP and WebSocket endpoints with the
// bot's own headers and prints what it sees.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Omok-KakaoTalk-bot/internal/irisfast"
	"github.com/park285/Omok-KakaoTalk-bot/internal/obslog"
)

func main() {
	listen := flag.Duration("listen", 10*time.Second, "how long to watch WS traffic")
	flag.Parse()

	if err := obslog.Init(obslog.Config{Level: "debug", Console: true, Format: "console"}); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()

	baseURL := os.Getenv("IRIS_BASE_URL")
	wsURL := os.Getenv("IRIS_WS_URL")
	if baseURL == "" {
		logger.Fatal("IRIS_BASE_URL is required")
	}
	headers := func() map[string]string {
		m := map[string]string{}
		for header, key := range map[string]string{
			"X-User-Id":    "X_USER_ID",
			"X-User-Email": "X_USER_EMAIL",
			"X-Session-Id": "X_SESSION_ID",
		} {
			if v := os.Getenv(key); v != "" {
				m[header] = v
			}
		}
		return m
	}

	client := irisfast.NewClient(baseURL,
		irisfast.WithHeaderProvider(headers),
		irisfast.WithTimeout(8*time.Second),
		irisfast.WithRetry(1),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	cfg, err := client.GetConfig(ctx)
	cancel()
	if err != nil {
		logger.Error("iris_config_failed", zap.Error(err))
	} else {
		logger.Info("iris_config",
			zap.Int("port", cfg.Port),
			zap.Int("polling_speed", cfg.PollingSpeed),
			zap.Int("message_rate", cfg.MessageRate),
			zap.String("endpoint", cfg.WebserverEndpoint),
		)
	}

	if wsURL == "" {
		logger.Info("ws_check_skipped", zap.String("reason", "IRIS_WS_URL not set"))
		return
	}
	ws := irisfast.NewWebSocket(wsURL, 0, time.Second)
	ws.SetHeaderProvider(headers)
	ws.OnStateChange(func(state irisfast.WebSocketState) {
		logger.Info("ws_state", zap.String("state", state.String()))
	})
	ws.OnMessage(func(msg *irisfast.Message) {
		logger.Info("ws_message",
			zap.String("chat_room", msg.Room),
			zap.String("user_id", msg.UserID()),
			zap.String("sender", msg.SenderName()),
			zap.String("text", msg.Msg),
		)
	})

	cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = ws.Connect(cctx)
	ccancel()
	if err != nil {
		logger.Error("ws_connect_failed", zap.Error(err))
		return
	}
	time.Sleep(*listen)
	_ = ws.Close(context.Background())
}
