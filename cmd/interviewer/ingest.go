package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/ai-interviewer/internal/services"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Chunk, embed and store reference documents in the knowledge base",
	Long: `Ingest stores question banks and evaluation rubrics in Qdrant so question
generation and scoring can retrieve them. PDF files are parsed, any other
file is read as plain text. Re-ingesting a file replaces its chunks.`,
	Args: cobra.MinimumNArgs(1),
	RunE: ingest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringP("type", "t", services.DocTypeQuestionBank,
		fmt.Sprintf("document type: %s or %s", services.DocTypeQuestionBank, services.DocTypeEvaluationRubric))
}

func ingest(cmd *cobra.Command, args []string) error {
	docType, _ := cmd.Flags().GetString("type")
	switch docType {
	case services.DocTypeQuestionBank, services.DocTypeEvaluationRubric:
	default:
		return fmt.Errorf("unknown document type %q", docType)
	}

	rt, err := setup(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	if !rt.cfg.Qdrant.Enabled() {
		return fmt.Errorf("knowledge base is not configured, set QDRANT_URL")
	}

	log := rt.log.With(zap.String("doc_type", docType))
	pdfParser := services.NewPDFParserService()

	var failed int
	for _, path := range args {
		docLog := log.With(zap.String("path", path))

		if _, err := os.Stat(path); err != nil {
			docLog.Warn("file not found, skipping", zap.Error(err))
			failed++
			continue
		}

		text, err := readDocument(path, pdfParser)
		if err != nil {
			docLog.Error("failed to extract text", zap.Error(err))
			failed++
			continue
		}
		docLog.Info("extracted text", zap.Int("characters", len(text)))

		chunks, err := rt.knowledge.Ingest(cmd.Context(), filepath.Base(path), docType, text)
		if err != nil {
			docLog.Error("failed to ingest document", zap.Error(err))
			failed++
			continue
		}

		docLog.Info("document ingested", zap.Int("chunks", chunks))
	}

	log.Info("ingestion finished",
		zap.Int("successful", len(args)-failed),
		zap.Int("failed", failed),
	)

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed to ingest", failed, len(args))
	}
	return nil
}

// readDocument returns the text of a PDF or a plain text file.
func readDocument(path string, pdfParser services.PDFParserService) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err := pdfParser.ExtractText(path)
		if err != nil {
			return "", err
		}
		return services.CleanText(text), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
