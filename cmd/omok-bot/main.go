package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Omok-KakaoTalk-bot/internal/adapter/omokpresenter"
	"github.com/park285/Omok-KakaoTalk-bot/internal/archive"
	"github.com/park285/Omok-KakaoTalk-bot/internal/bot"
	appcfg "github.com/park285/Omok-KakaoTalk-bot/internal/config"
	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
	"github.com/park285/Omok-KakaoTalk-bot/internal/irisfast"
	"github.com/park285/Omok-KakaoTalk-bot/internal/lobby"
	"github.com/park285/Omok-KakaoTalk-bot/internal/msgcat"
	"github.com/park285/Omok-KakaoTalk-bot/internal/obslog"
	"github.com/park285/Omok-KakaoTalk-bot/internal/render"
	"github.com/park285/Omok-KakaoTalk-bot/internal/room"
)

const timerInterval = time.Second

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := room.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis_init_failed", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	repo, err := openArchive(cfg)
	if err != nil {
		logger.Fatal("archive_init_failed", zap.String("driver", cfg.ArchiveDriver), zap.Error(err))
	}
	defer func() { _ = repo.Close() }()

	store := room.NewStore(rdb, cfg.RoomTTL)
	rooms := room.NewManager(store, gomoku.NewDispatcher(nil, nil), room.Options{
		BoardSize:   cfg.BoardSize,
		Mode:        cfg.Mode,
		TurnTimeout: cfg.TurnTimeout,
	})

	cat, err := msgcat.New(cfg.MsgTemplateDir)
	if err != nil {
		logger.Fatal("msgcat_init_failed", zap.String("dir", cfg.MsgTemplateDir), zap.Error(err))
	}

	headers := func() map[string]string {
		h := map[string]string{}
		if cfg.XUserID != "" {
			h["X-User-Id"] = cfg.XUserID
		}
		if cfg.XUserEmail != "" {
			h["X-User-Email"] = cfg.XUserEmail
		}
		if cfg.XSessionID != "" {
			h["X-Session-Id"] = cfg.XSessionID
		}
		return h
	}
	client := irisfast.NewClient(cfg.IrisBaseURL, irisfast.WithHeaderProvider(headers))
	ws := irisfast.NewWebSocket(cfg.IrisWSURL, 5, time.Second)
	ws.SetHeaderProvider(headers)
	ws.OnStateChange(func(state irisfast.WebSocketState) {
		logger.Info("ws_state", zap.String("state", state.String()))
	})
	egress := irisfast.NewEgress(cfg.EgressMode, cfg.EgressDryRun, client, ws, logger)

	handler := bot.NewHandler(bot.Deps{
		Rooms:        rooms,
		Lobby:        lobby.NewManager(rdb, rooms),
		Archive:      repo,
		Presenter:    omokpresenter.NewPresenter(egress, render.NewBoardRenderer(36)),
		Formatter:    omokpresenter.NewFormatter(cat, cfg.BotPrefix),
		Prefix:       cfg.BotPrefix,
		HistoryLimit: cfg.HistoryLimit,
	})

	ws.OnMessage(func(msg *irisfast.Message) {
		if msg == nil || msg.Msg == "" {
			return
		}
		if !cfg.RoomAllowed(msg.Room) {
			logger.Debug("room_not_allowed", zap.String("chat_room", msg.Room))
			return
		}
		if !handler.Accepts(msg.Msg) {
			return
		}
		// keep the read loop free
		go handler.HandleMessage(ctx, msg)
	})

	go room.NewTurnTimer(rooms, handler.OnTimeout).Run(ctx, timerInterval)
	go room.NewArchiveDrainer(store, repo, 0).Run(ctx, cfg.DrainInterval)

	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = ws.Connect(cctx)
	cancel()
	if err != nil {
		logger.Fatal("ws_connect_failed", zap.String("url", cfg.IrisWSURL), zap.Error(err))
	}
	logger.Info("omok_bot_started",
		zap.String("prefix", cfg.BotPrefix),
		zap.Int("board_size", cfg.BoardSize),
		zap.Duration("turn_timeout", cfg.TurnTimeout),
		zap.String("archive", cfg.ArchiveDriver),
		zap.String("egress", cfg.EgressMode),
	)

	<-ctx.Done()
	logger.Info("omok_bot_stopping")
	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	_ = ws.Close(closeCtx)
}

func openArchive(cfg *appcfg.AppConfig) (archive.Repository, error) {
	switch cfg.ArchiveDriver {
	case archive.DriverPostgres:
		return archive.Open(archive.DriverPostgres, cfg.DatabaseURL)
	case archive.DriverSQLite:
		return archive.Open(archive.DriverSQLite, cfg.ArchiveSQLitePath)
	default:
		obslog.L().Warn("archive_in_memory", zap.String("hint", "records are lost on restart"))
		return archive.NewMemoryRepository(), nil
	}
}
