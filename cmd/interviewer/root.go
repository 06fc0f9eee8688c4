package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/ai-interviewer/internal/config"
	"alfredoptarigan/ai-interviewer/internal/logger"
	"alfredoptarigan/ai-interviewer/internal/services"
	"alfredoptarigan/ai-interviewer/internal/telemetry"
)

const app = "interviewer"

// Actual version can be specified in build command.
var version = "unknown"

var (
	cfgFile   string
	debugFlag bool
	jsonFlag  bool

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "interviewer runs LLM driven mock interviews: resume matching, interview turns and evaluation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("%s version: %s\n", app, version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file using the environment variable names as keys")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&jsonFlag, "json", "j", false, "json format for logging")

	rootCmd.AddCommand(versionCmd)
}

// runtime holds the components shared by every command.
type runtime struct {
	cfg       *config.Config
	log       *zap.Logger
	llm       services.LLMService
	embedder  services.Embedder
	knowledge services.KnowledgeBase
	cache     services.ResponseCache
	closers   []func()
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	_ = r.log.Sync()
}

// setup loads configuration and builds the logger, telemetry, the LLM
// provider, the response cache and the knowledge base.
func setup(ctx context.Context, cmd *cobra.Command) (*runtime, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if cmd.Flags().Changed("debug") {
		cfg.Log.Debug = debugFlag
	}
	if cmd.Flags().Changed("json") {
		cfg.Log.JSON = jsonFlag
	}

	log, err := logger.New(logger.Options{JSON: cfg.Log.JSON, Debug: cfg.Log.Debug, File: cfg.Log.File})
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	rt := &runtime{cfg: cfg, log: log}

	tel, shutdown, err := telemetry.Init(ctx, cfg.Telemetry, log)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}
	rt.closers = append(rt.closers, shutdown)

	llm, err := services.NewLLMService(ctx, cfg.LLM, log)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("initializing llm provider: %w", err)
	}
	if embedder, ok := llm.(services.Embedder); ok {
		rt.embedder = embedder
	}
	rt.llm = services.InstrumentLLM(llm, tel.Tracer, tel.Meter, log)

	log.Info("llm provider ready",
		zap.String(logger.FieldProvider, llm.Provider()),
		zap.String(logger.FieldModel, llm.Model()),
	)

	cache, err := services.NewResponseCache(cfg.Cache.Path)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("opening response cache: %w", err)
	}
	rt.cache = cache
	rt.closers = append(rt.closers, func() {
		if err := cache.Close(); err != nil {
			log.Warn("failed to close response cache", zap.Error(err))
		}
	})

	rt.knowledge = services.NewNopKnowledgeBase()
	if cfg.Qdrant.Enabled() {
		kb, err := newKnowledgeBase(ctx, rt)
		if err != nil {
			log.Warn("knowledge base disabled", zap.Error(err))
		} else {
			rt.knowledge = kb
		}
	}

	return rt, nil
}

func newKnowledgeBase(ctx context.Context, rt *runtime) (services.KnowledgeBase, error) {
	embedder := rt.embedder
	if embedder == nil {
		// Embeddings always come from Gemini.
		gemini, err := services.NewGeminiService(ctx, rt.cfg.LLM.GeminiAPIKey, "gemini-2.5-flash", rt.log)
		if err != nil {
			return nil, fmt.Errorf("embeddings need GEMINI_API_KEY: %w", err)
		}
		embedder = gemini
	}

	store, err := services.NewQdrantService(rt.cfg.Qdrant.URL, rt.cfg.Qdrant.APIKey, rt.cfg.Qdrant.Collection, rt.log)
	if err != nil {
		return nil, err
	}
	if err := store.InitCollection(ctx); err != nil {
		return nil, err
	}

	rt.log.Info("knowledge base enabled", zap.String("collection", rt.cfg.Qdrant.Collection))
	return services.NewKnowledgeBase(store, embedder, services.NewTextChunker(), rt.log), nil
}
