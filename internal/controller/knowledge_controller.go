package controller

import (
	"ai-cservice-be/internal/dto"
	"ai-cservice-be/internal/pkg/serverutils"
	"ai-cservice-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IKnowledgeController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type knowledgeController struct {
	knowledgeService service.IKnowledgeService
}

func NewKnowledgeController(knowledgeService service.IKnowledgeService) IKnowledgeController {
	return &knowledgeController{
		knowledgeService: knowledgeService,
	}
}

func (c *knowledgeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/knowledge/v1")
	h.Get("search", c.Search)
	h.Get("stats", c.Stats)
	h.Get("documents", c.List)
	h.Get("documents/:id", c.Show)
	// Mutations require an operator token.
	h.Post("documents", serverutils.JwtMiddleware, c.Ingest)
	h.Delete("documents/:id", serverutils.JwtMiddleware, c.Delete)
}

func (c *knowledgeController) Ingest(ctx *fiber.Ctx) error {
	var req dto.IngestDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.knowledgeService.Ingest(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Document ingested", res))
}

func (c *knowledgeController) List(ctx *fiber.Ctx) error {
	res, err := c.knowledgeService.List(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get documents", res))
}

func (c *knowledgeController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid document id")
	}

	res, err := c.knowledgeService.Get(ctx.Context(), id)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "Document not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get document", res))
}

func (c *knowledgeController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid document id")
	}

	deleted, err := c.knowledgeService.Delete(ctx.Context(), id)
	if err != nil {
		return err
	}
	if !deleted {
		return fiber.NewError(fiber.StatusNotFound, "Document not found")
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Document deleted", nil))
}

func (c *knowledgeController) Search(ctx *fiber.Ctx) error {
	query := ctx.Query("q")
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Query parameter 'q' is required")
	}
	topK := ctx.QueryInt("topK", 0)

	chunks, err := c.knowledgeService.Search(ctx.Context(), query, topK)
	if err != nil {
		return err
	}

	res := dto.SearchResponse{
		Query:   query,
		Results: make([]dto.SearchResultDTO, len(chunks)),
	}
	for i, c := range chunks {
		res.Results[i] = dto.SearchResultDTO{
			DocumentName: c.DocumentName,
			Content:      c.Chunk.Content,
			Score:        c.Score,
		}
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search knowledge", res))
}

func (c *knowledgeController) Stats(ctx *fiber.Ctx) error {
	res, err := c.knowledgeService.Stats(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get stats", res))
}
