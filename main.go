package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	dispatchx "github.com/thanakit-dev/leadpilot/engine/dispatch"
	domainx "github.com/thanakit-dev/leadpilot/engine/domain"
	gatewayx "github.com/thanakit-dev/leadpilot/engine/gateway"
	turnnode "github.com/thanakit-dev/leadpilot/engine/nodes"
	orchestratorx "github.com/thanakit-dev/leadpilot/engine/orchestrator"
	retrievalx "github.com/thanakit-dev/leadpilot/engine/retrieval"
	statex "github.com/thanakit-dev/leadpilot/engine/state"
	configx "github.com/thanakit-dev/leadpilot/pkg/config"
	leadstorex "github.com/thanakit-dev/leadpilot/pkg/leadstore"
	logx "github.com/thanakit-dev/leadpilot/pkg/logger"
	openrouterx "github.com/thanakit-dev/leadpilot/pkg/openrouter"
)

type AppConfig struct {
	Domain       string `envconfig:"DOMAIN" default:"insurance"`
	ClientID     string `envconfig:"CLIENT_ID" default:"local"`
	CorpusDir    string `envconfig:"CORPUS_DIR"`
	StoreBackend string `envconfig:"STORE_BACKEND" default:"memory"`
	SinkBackend  string `envconfig:"SINK_BACKEND" default:"log"`
}

func main() {
	logCfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*logCfg)

	appCfg := configx.MustNew[AppConfig]("LEADPILOT")

	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	openRouterClient := openrouterx.NewClient(*openRouterCfg)
	if openRouterClient == nil {
		log.Fatal().Msg("failed to initialize openrouter client")
	}

	gw, err := gatewayx.New(openRouterClient, *openRouterCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize llm gateway")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store := buildStore(appCfg)
	sink := buildSink(ctx, appCfg)

	retriever := retrievalx.NewEngine(gw)
	if appCfg.CorpusDir != "" {
		if err := retriever.LoadCorpusDir(ctx, appCfg.CorpusDir); err != nil {
			log.Fatal().Err(err).Str("dir", appCfg.CorpusDir).Msg("failed to load knowledge corpus")
		}
		go func() {
			if err := retriever.WatchCorpusDir(ctx, appCfg.CorpusDir); err != nil {
				log.Error().Err(err).Msg("corpus watcher stopped")
			}
		}()
	}

	registry := dispatchx.NewRegistry()
	packs := domainx.BuiltinPacks()
	var active *domainx.Config
	for _, pack := range packs {
		if pack.Register != nil {
			pack.Register(registry)
		}
		if string(pack.Config.Domain) == appCfg.Domain {
			active = pack.Config
		}
	}
	if active == nil {
		log.Fatal().Str("domain", appCfg.Domain).Msg("unknown domain")
	}

	orch, err := orchestratorx.New(store, gw, retriever, registry, sink)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build orchestrator")
	}

	runREPL(ctx, orch, active, appCfg.ClientID)
}

func buildStore(cfg *AppConfig) statex.Store {
	if cfg.StoreBackend == "redis" {
		redisCfg := configx.MustNew[statex.RedisRESTConfig]("UPSTASH_REDIS")
		store, err := statex.NewRedisRESTStore(*redisCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize redis store")
		}
		return store
	}
	return statex.NewMemoryStore()
}

func buildSink(ctx context.Context, cfg *AppConfig) contractx.LeadSink {
	switch cfg.SinkBackend {
	case "postgres":
		pgCfg := configx.MustNew[leadstorex.PostgresConfig]("LEADSTORE_PG")
		sink, err := leadstorex.NewPostgresSink(ctx, *pgCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize postgres lead sink")
		}
		return sink
	case "webhook":
		whCfg := configx.MustNew[leadstorex.WebhookConfig]("LEADSTORE_WEBHOOK")
		return leadstorex.MustNewWebhookSink(*whCfg)
	default:
		return leadstorex.LogSink{}
	}
}

func runREPL(ctx context.Context, orch *orchestratorx.Orchestrator, cfg *domainx.Config, clientID string) {
	fmt.Printf("domain=%s  (ctrl-c to quit)\n", cfg.Domain)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}

		resp, err := orch.ProcessMessage(ctx, turnnode.TurnRequest{
			ClientID: clientID,
			UserID:   "repl",
			Message:  message,
			Source:   "webchat",
			Config:   cfg,
		})
		if err != nil {
			log.Error().Err(err).Msg("turn failed")
			continue
		}

		fmt.Println(resp.Message)
		if resp.ShouldCaptureLead {
			fmt.Printf("[lead captured: score=%.0f]\n", resp.LeadScore)
		}
		for _, q := range resp.FollowUpQuestions {
			fmt.Printf("  ? %s\n", q)
		}
	}
}
