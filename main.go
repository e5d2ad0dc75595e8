package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	analyzerx "github.com/tanpawarit/screening-decision/agent/agents/analyzer"
	assemblerx "github.com/tanpawarit/screening-decision/agent/assembler"
	contractx "github.com/tanpawarit/screening-decision/agent/contract"
	enginex "github.com/tanpawarit/screening-decision/agent/engine"
	leasex "github.com/tanpawarit/screening-decision/agent/lease"
	llmx "github.com/tanpawarit/screening-decision/agent/llm"
	notifyx "github.com/tanpawarit/screening-decision/agent/notify"
	promptx "github.com/tanpawarit/screening-decision/agent/prompt"
	storex "github.com/tanpawarit/screening-decision/agent/store"
	toolx "github.com/tanpawarit/screening-decision/agent/tool"
	configx "github.com/tanpawarit/screening-decision/pkg/config"
	databasex "github.com/tanpawarit/screening-decision/pkg/database"
	_ "github.com/tanpawarit/screening-decision/pkg/logger/autoload"
	openrouterx "github.com/tanpawarit/screening-decision/pkg/openrouter"
	qstashx "github.com/tanpawarit/screening-decision/pkg/qstash"
	telemetryx "github.com/tanpawarit/screening-decision/pkg/telemetry"
)

type AppConfig struct {
	LeaseBackend string `envconfig:"LEASE_BACKEND" split_words:"true" default:"memory"`
	// Notifier is a comma separated list of none, qstash and nats.
	Notifier    string `envconfig:"NOTIFIER" default:"none"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" split_words:"true" default:"false"`
}

func (c *AppConfig) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.LeaseBackend)) {
	case "memory", "upstash":
	default:
		return fmt.Errorf("unsupported lease backend %q", c.LeaseBackend)
	}
	for _, name := range c.notifiers() {
		switch name {
		case "none", "qstash", "nats":
		default:
			return fmt.Errorf("unsupported notifier %q", name)
		}
	}
	return nil
}

func (c *AppConfig) notifiers() []string {
	var out []string
	for _, part := range strings.Split(c.Notifier, ",") {
		if name := strings.ToLower(strings.TrimSpace(part)); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func main() {
	conversation := flag.String("conversation", "", "conversation id to analyze")
	match := flag.String("match", "", "optional job posting match id hint")
	force := flag.Bool("force", false, "reanalyze even when the conversation is already analyzed")

	appCfg := configx.MustNew[AppConfig]("")

	req, err := parseRequest(*conversation, *match, *force)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid arguments")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := run(ctx, appCfg, req)
	if err != nil {
		log.Fatal().Err(err).Msg("analysis setup failed")
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("encode analysis result")
	}
	fmt.Println(string(out))

	if !res.AnalysisCompleted {
		stop()
		os.Exit(1)
	}
}

func parseRequest(conversation, match string, force bool) (contractx.AnalysisRequest, error) {
	conversationID, err := uuid.Parse(strings.TrimSpace(conversation))
	if err != nil {
		return contractx.AnalysisRequest{}, fmt.Errorf("-conversation must be a uuid: %w", err)
	}
	req := contractx.AnalysisRequest{
		ConversationID:  conversationID,
		ForceReanalysis: force,
	}
	if strings.TrimSpace(match) != "" {
		matchID, err := uuid.Parse(strings.TrimSpace(match))
		if err != nil {
			return contractx.AnalysisRequest{}, fmt.Errorf("-match must be a uuid: %w", err)
		}
		req.MatchID = matchID
	}
	return req, nil
}

func run(ctx context.Context, appCfg *AppConfig, req contractx.AnalysisRequest) (contractx.AnalysisResult, error) {
	var none contractx.AnalysisResult

	tracingCfg := configx.MustNew[telemetryx.Config]("TRACING")
	tp, err := telemetryx.NewTracerProvider(*tracingCfg, os.Stderr)
	if err != nil {
		return none, err
	}
	defer func() {
		if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()

	dbCfg := configx.MustNew[databasex.Config]("DATABASE")
	db, err := databasex.Open(*dbCfg)
	if err != nil {
		return none, err
	}
	defer db.Close()

	store := storex.NewBunStore(db)
	if appCfg.AutoMigrate {
		if err := store.CreateSchema(ctx); err != nil {
			return none, err
		}
	}

	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	engine, err := buildEngine(ctx, llmCfg)
	if err != nil {
		return none, err
	}

	notifier, closeNotifier, err := buildNotifier(appCfg)
	if err != nil {
		return none, err
	}
	defer closeNotifier()

	locker, err := buildLocker(appCfg)
	if err != nil {
		return none, err
	}

	analyzer, err := analyzerx.New(analyzerx.Deps{
		Store:     store,
		Assembler: assemblerx.New(store),
		Renderer:  promptx.NewRenderer(promptx.LoadPromptSet()),
		Engine:    engine,
		Tools:     toolx.NewOrchestrator(store, toolx.WithNotifier(notifier)),
		Locker:    locker,
	})
	if err != nil {
		return none, err
	}

	return analyzer.Analyze(ctx, req), nil
}

func buildEngine(ctx context.Context, cfg *llmx.Config) (contractx.Engine, error) {
	orCfg := cfg.OpenRouter()
	log.Info().
		Str("backend", cfg.NormalizedBackend()).
		Str("model", orCfg.Model).
		Msg("reasoning engine configured")

	switch cfg.NormalizedBackend() {
	case llmx.BackendOpenAI:
		client := openrouterx.NewClient(orCfg)
		if client == nil {
			return nil, errors.New("failed to initialize openrouter client")
		}
		return enginex.NewOpenAI(&client.Chat.Completions, enginex.OpenAIConfig{
			Model:       orCfg.Model,
			MaxTokens:   orCfg.MaxTokens(),
			Temperature: orCfg.Temperature,
		}, toolx.Catalog())
	default:
		chatModel, err := orCfg.New(ctx)
		if err != nil {
			return nil, err
		}
		return enginex.NewEino(ctx, chatModel, toolx.Infos())
	}
}

func buildNotifier(appCfg *AppConfig) (contractx.Notifier, func(), error) {
	var (
		fanout  notifyx.Fanout
		closers []func()
	)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	for _, name := range appCfg.notifiers() {
		switch name {
		case "qstash":
			cfg := configx.MustNew[qstashx.Config]("QSTASH")
			if !cfg.Enabled() {
				closeAll()
				return nil, nil, errors.New("qstash notifier needs QSTASH_TOKEN and QSTASH_DESTINATION")
			}
			client, err := qstashx.NewClient(*cfg)
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			fanout = append(fanout, notifyx.NewQStash(client, cfg.Destination))
		case "nats":
			cfg := configx.MustNew[notifyx.NATSConfig]("NATS")
			n, err := notifyx.DialNATS(*cfg)
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			fanout = append(fanout, n)
			closers = append(closers, func() { _ = n.Close() })
		}
	}

	switch len(fanout) {
	case 0:
		return notifyx.Noop{}, closeAll, nil
	case 1:
		return fanout[0], closeAll, nil
	default:
		return fanout, closeAll, nil
	}
}

func buildLocker(appCfg *AppConfig) (contractx.Locker, error) {
	if strings.EqualFold(strings.TrimSpace(appCfg.LeaseBackend), "upstash") {
		cfg := configx.MustNew[leasex.UpstashRedisConfig]("UPSTASH_REDIS")
		return leasex.NewUpstashRedis(*cfg)
	}
	return leasex.NewMemory(0), nil
}
