package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"ai-cservice-be/internal/entity"
	"ai-cservice-be/internal/repository/contract"
	"ai-cservice-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentChunkRepository struct {
	mu     sync.RWMutex
	chunks []*entity.DocumentChunk
}

func NewDocumentChunkRepository() *DocumentChunkRepository {
	return &DocumentChunkRepository{}
}

func (r *DocumentChunkRepository) Create(ctx context.Context, chunk *entity.DocumentChunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store(chunk)
	return nil
}

func (r *DocumentChunkRepository) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range chunks {
		r.store(c)
	}
	return nil
}

func (r *DocumentChunkRepository) store(chunk *entity.DocumentChunk) {
	if chunk.Id == uuid.Nil {
		chunk.Id = uuid.New()
	}
	if chunk.CreatedAt.IsZero() {
		chunk.CreatedAt = time.Now()
	}
	stored := *chunk
	r.chunks = append(r.chunks, &stored)
}

func (r *DocumentChunkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, c := range r.chunks {
		if c.Id == id && !c.IsDeleted {
			c.IsDeleted = true
			c.DeletedAt = &now
		}
	}
	return nil
}

func (r *DocumentChunkRepository) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, c := range r.chunks {
		if c.DocumentId == documentId && !c.IsDeleted {
			c.IsDeleted = true
			c.DeletedAt = &now
		}
	}
	return nil
}

func (r *DocumentChunkRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error) {
	matches, err := r.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (r *DocumentChunkRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*entity.DocumentChunk
	for _, c := range r.chunks {
		if c.IsDeleted {
			continue
		}
		if matchChunk(c, specs) {
			copied := *c
			matches = append(matches, &copied)
		}
	}
	applyChunkOrder(matches, specs)
	return matches, nil
}

func (r *DocumentChunkRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	matches, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(matches)), nil
}

var _ contract.DocumentChunkRepository = (*DocumentChunkRepository)(nil)

func matchChunk(c *entity.DocumentChunk, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if c.Id != s.ID {
				return false
			}
		case specification.ByDocumentID:
			if c.DocumentId != s.DocumentID {
				return false
			}
		case specification.ByDocumentIDs:
			found := false
			for _, id := range s.DocumentIDs {
				if c.DocumentId == id {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

func applyChunkOrder(chunks []*entity.DocumentChunk, specs []specification.Specification) {
	for _, spec := range specs {
		if _, ok := spec.(specification.ChunkOrder); ok {
			sort.SliceStable(chunks, func(i, j int) bool {
				return chunks[i].ChunkIndex < chunks[j].ChunkIndex
			})
		}
	}
}
