package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"studymate/app/config"
	"studymate/app/server"
	"studymate/app/service/assistant"
	"studymate/app/service/history"
	"studymate/app/service/mcpserver"
	"studymate/app/service/memory"
	"studymate/app/util/mylog"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

func main() {
	var (
		once       = flag.String("once", "", "run a single prompt and exit")
		serve      = flag.Bool("serve", false, "run the HTTP API server")
		addr       = flag.String("addr", "", "HTTP listen address, overrides config")
		sessionID  = flag.String("session-id", "default", "conversation session identifier")
		style      = flag.String("style", "short", "answer style: short or detailed")
		model      = flag.String("model", "", "chat completion model, overrides config")
		embedModel = flag.String("embed-model", "", "embedding model, overrides config")
		mcpMode    = flag.Bool("mcp", false, "serve study-note tools over MCP stdio")
	)
	flag.Parse()

	di := do.New()
	defer di.Shutdown()

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if *model != "" {
		cfg.LLM.Model = *model
	}
	if *embedModel != "" {
		cfg.Embeddings.Model = *embedModel
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, memory.New)
	do.Provide(di, history.New)
	do.Provide(di, assistant.New)
	do.Provide(di, server.New)
	do.Provide(di, mcpserver.New)

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		cancel()
	}()

	switch {
	case *mcpMode:
		if err := do.MustInvoke[*mcpserver.Service](di).Run(); err != nil {
			log.Fatalf("mcp server failed: %v", err)
		}

	case *serve:
		slog.Info("Service started")

		if err := do.MustInvoke[*server.Server](di).Run(appCtx); err != nil {
			log.Fatalf("http server failed: %v", err)
		}

	case *once != "":
		runOnce(appCtx, di, *once, *sessionID, *style)

	default:
		runInteractive(appCtx, di, *sessionID, *style)
	}
}
