package memory

import (
	"context"

	"ai-cservice-be/internal/repository/contract"
	"ai-cservice-be/internal/repository/unitofwork"
)

// UnitOfWork shares one pair of in-memory repositories. Begin, Commit and
// Rollback are accepted but not transactional; writes apply immediately.
type UnitOfWork struct {
	documents *DocumentRepository
	chunks    *DocumentChunkRepository
}

func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{
		documents: NewDocumentRepository(),
		chunks:    NewDocumentChunkRepository(),
	}
}

func (u *UnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *UnitOfWork) Commit() error                   { return nil }
func (u *UnitOfWork) Rollback() error                 { return nil }

func (u *UnitOfWork) DocumentRepository() contract.DocumentRepository {
	return u.documents
}

func (u *UnitOfWork) DocumentChunkRepository() contract.DocumentChunkRepository {
	return u.chunks
}

var _ unitofwork.UnitOfWork = (*UnitOfWork)(nil)

// Factory hands out the same unit of work every time so state survives
// across requests within one process.
type Factory struct {
	uow *UnitOfWork
}

func NewFactory() *Factory {
	return &Factory{uow: NewUnitOfWork()}
}

func (f *Factory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

var _ unitofwork.RepositoryFactory = (*Factory)(nil)
