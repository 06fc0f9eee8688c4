package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/ai-interviewer/internal/config"
	"alfredoptarigan/ai-interviewer/internal/handlers"
	"alfredoptarigan/ai-interviewer/internal/repositories"
	"alfredoptarigan/ai-interviewer/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the evaluation worker",
	RunE:  serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	rt, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg, log := rt.cfg, rt.log

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	interviewRepo := repositories.NewInterviewRepository(db)

	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	pdfParser := services.NewPDFParserService()

	retries := cfg.LLM.MaxRetries
	matcher := services.NewResumeMatcher(rt.llm, rt.cache, retries, log)
	generator := services.NewQuestionGenerator(rt.llm, rt.knowledge, rt.cache, retries, log)
	conductor := services.NewConductor(rt.llm, cfg.Interview.MaxQuestions, log)
	evaluator := services.NewEvaluatorService(rt.llm, rt.knowledge, retries, log)
	extractor := services.NewResumeExtractor(cfg.Storage.ResumeBackendURL, storageService, pdfParser, rt.llm, retries, log)

	processor := services.NewInterviewProcessor(interviewRepo, evaluator, matcher, log)
	worker := services.NewWorker(interviewRepo, processor, cfg.Worker.Concurrency, cfg.Worker.PollInterval, log)
	worker.Start(ctx)
	defer worker.Stop()

	app := handlers.NewApp(handlers.AppConfig{
		MaxFileSize: cfg.Storage.MaxFileSize,
		AccessLog:   !cfg.Log.JSON,
		LLMTimeout:  cfg.LLM.Timeout,
		Log:         log,
	}, handlers.Handlers{
		Resume:     handlers.NewResumeHandler(matcher, extractor, cfg.Storage.MaxFileSize, log),
		Questions:  handlers.NewQuestionHandler(generator, log),
		Chat:       handlers.NewChatHandler(conductor, cfg.LLM.Timeout, log),
		Evaluation: handlers.NewEvaluationHandler(evaluator, log),
		Interviews: handlers.NewInterviewHandler(interviewRepo, worker, services.NewReportRenderer(), log),
	})

	go func() {
		<-ctx.Done()
		log.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Server.Env))

	if err := app.Listen(addr); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
