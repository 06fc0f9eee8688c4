package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// KnowledgeBase supplies optional guidance snippets (question banks,
// rubrics) for prompts.
type KnowledgeBase interface {
	Retrieve(ctx context.Context, docType, query string, limit int) (string, error)
	Ingest(ctx context.Context, source, docType, text string) (int, error)
}

type knowledgeBase struct {
	store    QdrantService
	embedder Embedder
	chunker  TextChunker
	log      *zap.Logger
}

func NewKnowledgeBase(store QdrantService, embedder Embedder, chunker TextChunker, log *zap.Logger) KnowledgeBase {
	return &knowledgeBase{
		store:    store,
		embedder: embedder,
		chunker:  chunker,
		log:      log,
	}
}

// Retrieve implements KnowledgeBase.
func (k *knowledgeBase) Retrieve(ctx context.Context, docType, query string, limit int) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", nil
	}

	embedding, err := k.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to generate query embedding: %w", err)
	}

	results, err := k.store.SearchSimilar(ctx, embedding, docType, limit)
	if err != nil {
		return "", fmt.Errorf("failed to search %s: %w", docType, err)
	}

	k.log.Debug("knowledge retrieved", zap.String("doc_type", docType), zap.Int("results", len(results)))

	return FormatRAGContext(results), nil
}

// Ingest replaces every chunk previously stored for source.
func (k *knowledgeBase) Ingest(ctx context.Context, source, docType, text string) (int, error) {
	if err := k.store.DeleteSource(ctx, source); err != nil {
		return 0, err
	}

	chunks := k.chunker.ChunkText(text, 1000, 200)
	for i, chunk := range chunks {
		embedding, err := k.embedder.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return i, fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}
		if err := k.store.UpsertChunk(ctx, source, docType, chunk, embedding); err != nil {
			return i, fmt.Errorf("failed to store chunk %d: %w", i, err)
		}
	}

	k.log.Info("knowledge ingested",
		zap.String("source", source),
		zap.String("doc_type", docType),
		zap.Int("chunks", len(chunks)),
	)

	return len(chunks), nil
}

type nopKnowledgeBase struct{}

// NewNopKnowledgeBase is used when no vector store is configured.
func NewNopKnowledgeBase() KnowledgeBase {
	return nopKnowledgeBase{}
}

func (nopKnowledgeBase) Retrieve(context.Context, string, string, int) (string, error) {
	return "", nil
}

func (nopKnowledgeBase) Ingest(context.Context, string, string, string) (int, error) {
	return 0, fmt.Errorf("knowledge base is disabled: set QDRANT_URL")
}

// guidance fetches knowledge base context, logging and swallowing failures.
func guidance(ctx context.Context, kb KnowledgeBase, log *zap.Logger, docType, query string) string {
	if kb == nil {
		return ""
	}
	text, err := kb.Retrieve(ctx, docType, query, 3)
	if err != nil {
		log.Warn("failed to retrieve knowledge", zap.String("doc_type", docType), zap.Error(err))
		return ""
	}
	return text
}
