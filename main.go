package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/buildershub-receptionist/agent/inventory"
	"github.com/tanpawarit/buildershub-receptionist/agent/llm"
	"github.com/tanpawarit/buildershub-receptionist/agent/receptionist"
	statex "github.com/tanpawarit/buildershub-receptionist/agent/state"
	storex "github.com/tanpawarit/buildershub-receptionist/agent/store"
	toolx "github.com/tanpawarit/buildershub-receptionist/agent/tool"
	"github.com/tanpawarit/buildershub-receptionist/agent/transfer"
	"github.com/tanpawarit/buildershub-receptionist/agent/voice"
	"github.com/tanpawarit/buildershub-receptionist/internal/httpserver"
	configx "github.com/tanpawarit/buildershub-receptionist/pkg/config"
	_ "github.com/tanpawarit/buildershub-receptionist/pkg/logger/autoload"
	qstashx "github.com/tanpawarit/buildershub-receptionist/pkg/qstash"
)

type AppConfig struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR"`
	StoreFile       string        `envconfig:"STORE_DIRECTORY_FILE"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	CallIdleTimeout time.Duration `envconfig:"CALL_IDLE_TIMEOUT" default:"15m"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("receptionist stopped")
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCfg := configx.MustNew[AppConfig]("")
	voiceCfg := configx.MustNew[voice.Config]("")

	dir := storex.Default()
	if path := strings.TrimSpace(appCfg.StoreFile); path != "" {
		loaded, err := storex.LoadFile(path)
		if err != nil {
			return fmt.Errorf("load store directory: %w", err)
		}
		dir = loaded
	}
	log.Info().Strs("locations", dir.Names()).Msg("store directory loaded")

	invCfg := configx.MustNew[inventory.Config]("INVENTORY")
	source, closeInventory := inventory.Build(*invCfg)
	defer func() {
		if err := closeInventory(); err != nil {
			log.Warn().Err(err).Msg("close inventory backends")
		}
	}()

	handlers := toolx.Handlers{
		Directory: dir,
		Inventory: source,
	}
	if svc := buildTransfer(); svc != nil {
		handlers.Transfer = svc
	}
	infos, executor := toolx.Build(handlers)

	store, err := buildStateStore()
	if err != nil {
		return err
	}

	var conversation httpserver.Conversation
	llmCfg := configx.MustNew[llm.Config]("OPENROUTER")
	if err := llmCfg.Validate(); err != nil {
		log.Warn().Err(err).Msg("conversation model disabled - only tool endpoints are served")
	} else {
		orCfg := llmCfg.Receptionist()
		chatModel, err := orCfg.New(ctx)
		if err != nil {
			return err
		}
		r, err := receptionist.New(ctx, chatModel, dir, infos, executor, store)
		if err != nil {
			return fmt.Errorf("build receptionist: %w", err)
		}
		conversation = r
		log.Info().Str("model", orCfg.Model).Msg("conversation model ready")
	}

	e := httpserver.New(log.Logger)
	api := &httpserver.Handlers{
		Executor:     executor,
		Conversation: conversation,
		Voice:        *voiceCfg,
		Logger:       log.Logger,
		IdleTimeout:  appCfg.CallIdleTimeout,
	}
	api.Register(e)
	go api.Janitor(ctx, time.Minute)

	addr := strings.TrimSpace(appCfg.HTTPAddr)
	if addr == "" {
		addr = fmt.Sprintf(":%d", voiceCfg.Port)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("agent_name", voiceCfg.AgentName).Msg("receptionist listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func buildTransfer() *transfer.Service {
	lkCfg := configx.MustNew[transfer.LiveKitConfig]("")
	backend, err := transfer.NewLiveKitTransfer(*lkCfg)
	if err != nil {
		log.Warn().Err(err).Msg("warm transfer disabled")
		return nil
	}

	var opts []transfer.Option
	qstashCfg := configx.MustNew[qstashx.Config]("QSTASH")
	if qstashCfg.Enabled() {
		client, err := qstashx.NewClient(*qstashCfg)
		if err != nil {
			log.Warn().Err(err).Msg("transfer events disabled")
		} else {
			opts = append(opts, transfer.WithNotifier(transfer.NewQStashNotifier(client, qstashCfg.Destination)))
		}
	}
	return transfer.NewService(backend, opts...)
}

func buildStateStore() (statex.Store, error) {
	cfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
	if !cfg.Enabled() {
		return statex.NewMemoryStore(), nil
	}
	store, err := statex.NewUpstashRedisStore(*cfg)
	if err != nil {
		return nil, fmt.Errorf("build upstash call store: %w", err)
	}
	return store, nil
}
