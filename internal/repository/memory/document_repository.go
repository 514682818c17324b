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

// DocumentRepository keeps documents in process memory. It interprets the
// common specifications by type switch instead of building SQL, which is
// enough for service tests and for running without a database.
type DocumentRepository struct {
	mu   sync.RWMutex
	docs []*entity.Document
}

func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{}
}

func (r *DocumentRepository) Create(ctx context.Context, document *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if document.Id == uuid.Nil {
		document.Id = uuid.New()
	}
	if document.CreatedAt.IsZero() {
		document.CreatedAt = time.Now()
	}
	stored := *document
	r.docs = append(r.docs, &stored)
	return nil
}

func (r *DocumentRepository) Update(ctx context.Context, document *entity.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, d := range r.docs {
		if d.Id == document.Id {
			stored := *document
			r.docs[i] = &stored
			return nil
		}
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, d := range r.docs {
		if d.Id == id && !d.IsDeleted {
			d.IsDeleted = true
			d.DeletedAt = &now
		}
	}
	return nil
}

func (r *DocumentRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	matches, err := r.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (r *DocumentRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*entity.Document
	for _, d := range r.docs {
		if d.IsDeleted {
			continue
		}
		if matchDocument(d, specs) {
			copied := *d
			matches = append(matches, &copied)
		}
	}
	applyDocumentOrder(matches, specs)
	return applyDocumentPagination(matches, specs), nil
}

func (r *DocumentRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	matches, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(matches)), nil
}

var _ contract.DocumentRepository = (*DocumentRepository)(nil)

func matchDocument(d *entity.Document, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if d.Id != s.ID {
				return false
			}
		case specification.ByIDs:
			found := false
			for _, id := range s.IDs {
				if d.Id == id {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case specification.ByName:
			if d.Name != s.Name {
				return false
			}
		}
	}
	return true
}

func applyDocumentOrder(docs []*entity.Document, specs []specification.Specification) {
	for _, spec := range specs {
		if s, ok := spec.(specification.OrderBy); ok && s.Field == "created_at" {
			sort.SliceStable(docs, func(i, j int) bool {
				if s.Desc {
					return docs[i].CreatedAt.After(docs[j].CreatedAt)
				}
				return docs[i].CreatedAt.Before(docs[j].CreatedAt)
			})
		}
	}
}

func applyDocumentPagination(docs []*entity.Document, specs []specification.Specification) []*entity.Document {
	for _, spec := range specs {
		if s, ok := spec.(specification.Pagination); ok {
			if s.Offset >= len(docs) {
				return nil
			}
			docs = docs[s.Offset:]
			if s.Limit > 0 && s.Limit < len(docs) {
				docs = docs[:s.Limit]
			}
		}
	}
	return docs
}
