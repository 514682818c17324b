// FILE: internal/service/knowledge_service.go
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ai-cservice-be/internal/dto"
	"ai-cservice-be/internal/entity"
	"ai-cservice-be/internal/pkg/logger"
	"ai-cservice-be/internal/repository/specification"
	"ai-cservice-be/internal/repository/unitofwork"
	"ai-cservice-be/pkg/embedding"
	"ai-cservice-be/pkg/utils"

	"github.com/google/uuid"
)

const (
	DefaultChunkSize    = 2000
	DefaultChunkOverlap = 200
	DefaultTopK         = 5
)

type IKnowledgeService interface {
	Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error)
	List(ctx context.Context) ([]*dto.DocumentResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.DocumentDetailResponse, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Search(ctx context.Context, query string, topK int) ([]entity.ScoredChunk, error)
	Stats(ctx context.Context) (*dto.KnowledgeStatsResponse, error)
}

type knowledgeService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
	chunkSize         int
	chunkOverlap      int
	defaultTopK       int
	logger            logger.ILogger
}

func NewKnowledgeService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
	chunkSize int,
	chunkOverlap int,
	defaultTopK int,
	log logger.ILogger,
) IKnowledgeService {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap <= 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	if defaultTopK <= 0 {
		defaultTopK = DefaultTopK
	}
	return &knowledgeService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		chunkSize:         chunkSize,
		chunkOverlap:      chunkOverlap,
		defaultTopK:       defaultTopK,
		logger:            log,
	}
}

// Ingest splits the document, embeds every chunk up front and only then
// touches the database. A failed embedding aborts the whole ingestion so a
// document is never stored half-indexed.
func (s *knowledgeService) Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error) {
	chunks, err := utils.SplitText(req.Content, s.chunkSize, s.chunkOverlap)
	if err != nil {
		return nil, err
	}

	vectors, err := s.embeddingProvider.EmbedBatch(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to embed document %q: %w", req.Name, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding provider returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	doc := entity.Document{
		Id:        uuid.New(),
		Name:      req.Name,
		Content:   req.Content,
		Size:      int64(len(req.Content)),
		CreatedAt: time.Now(),
	}

	chunkEntities := make([]*entity.DocumentChunk, len(chunks))
	for i, content := range chunks {
		chunkEntities[i] = &entity.DocumentChunk{
			Id:         uuid.New(),
			DocumentId: doc.Id,
			Content:    content,
			Embedding:  vectors[i],
			ChunkIndex: i,
			CreatedAt:  doc.CreatedAt,
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	if err := uow.DocumentRepository().Create(ctx, &doc); err != nil {
		uow.Rollback()
		return nil, err
	}
	if err := uow.DocumentChunkRepository().CreateBulk(ctx, chunkEntities); err != nil {
		uow.Rollback()
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("KnowledgeService", "Document ingested", map[string]interface{}{
		"document_id": doc.Id.String(),
		"name":        doc.Name,
		"chunks":      len(chunkEntities),
	})

	return &dto.IngestDocumentResponse{
		Id:         doc.Id,
		Name:       doc.Name,
		ChunkCount: len(chunkEntities),
	}, nil
}

func (s *knowledgeService) List(ctx context.Context) ([]*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	docs, err := uow.DocumentRepository().FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}

	res := make([]*dto.DocumentResponse, len(docs))
	for i, d := range docs {
		res[i] = &dto.DocumentResponse{
			Id:        d.Id,
			Name:      d.Name,
			Size:      d.Size,
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		}
	}
	return res, nil
}

func (s *knowledgeService) Get(ctx context.Context, id uuid.UUID) (*dto.DocumentDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	chunkCount, err := uow.DocumentChunkRepository().Count(ctx, specification.ByDocumentID{DocumentID: id})
	if err != nil {
		return nil, err
	}

	return &dto.DocumentDetailResponse{
		Id:         doc.Id,
		Name:       doc.Name,
		Content:    doc.Content,
		Size:       doc.Size,
		ChunkCount: int(chunkCount),
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}, nil
}

// Delete removes a document and its chunks in one transaction. It reports
// whether anything was actually deleted.
func (s *knowledgeService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		uow.Rollback()
		return false, err
	}
	if doc == nil {
		uow.Rollback()
		return false, nil
	}

	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, id); err != nil {
		uow.Rollback()
		return false, err
	}
	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		uow.Rollback()
		return false, err
	}
	if err := uow.Commit(); err != nil {
		return false, err
	}

	s.logger.Info("KnowledgeService", "Document deleted", map[string]interface{}{
		"document_id": id.String(),
	})
	return true, nil
}

// Search embeds the query and scores every stored chunk by cosine
// similarity in process. Chunks are visited in document creation order and
// chunk order, and the final sort is stable, so equal scores keep that
// order.
func (s *knowledgeService) Search(ctx context.Context, query string, topK int) ([]entity.ScoredChunk, error) {
	if topK <= 0 {
		topK = s.defaultTopK
	}

	queryVector, err := s.embeddingProvider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	docs, err := uow.DocumentRepository().FindAll(ctx, specification.OrderBy{Field: "created_at"})
	if err != nil {
		return nil, err
	}

	var scored []entity.ScoredChunk
	for _, doc := range docs {
		chunks, err := uow.DocumentChunkRepository().FindAll(ctx,
			specification.ByDocumentID{DocumentID: doc.Id},
			specification.ChunkOrder{},
		)
		if err != nil {
			return nil, err
		}
		for _, chunk := range chunks {
			scored = append(scored, entity.ScoredChunk{
				Chunk:        chunk,
				DocumentName: doc.Name,
				Score:        embedding.CosineSimilarity(queryVector, chunk.Embedding),
			})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

func (s *knowledgeService) Stats(ctx context.Context) (*dto.KnowledgeStatsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	docCount, err := uow.DocumentRepository().Count(ctx)
	if err != nil {
		return nil, err
	}
	chunkCount, err := uow.DocumentChunkRepository().Count(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.KnowledgeStatsResponse{
		DocumentCount: docCount,
		ChunkCount:    chunkCount,
	}, nil
}
