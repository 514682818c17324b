package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-cservice-be/internal/dto"
	"ai-cservice-be/internal/repository/memory"
	"ai-cservice-be/pkg/embedding"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type failingEmbedder struct{}

func (failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("embedding provider unavailable")
}

func (failingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("embedding provider unavailable")
}

func newTestKnowledgeService() IKnowledgeService {
	return NewKnowledgeService(
		memory.NewFactory(),
		embedding.NewDeterministicProvider(0),
		100, // chunkSize keeps test fixtures small
		20,
		5,
		nopLogger{},
	)
}

func TestIngestSplitsIntoChunks(t *testing.T) {
	svc := newTestKnowledgeService()
	ctx := context.Background()

	content := strings.Repeat("退货政策说明。", 40) // well past one chunk
	res, err := svc.Ingest(ctx, &dto.IngestDocumentRequest{Name: "退货政策", Content: content})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, res.Id)
	require.Greater(t, res.ChunkCount, 1)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.DocumentCount)
	require.Equal(t, int64(res.ChunkCount), stats.ChunkCount)
}

func TestIngestEmbeddingFailureLeavesNothingBehind(t *testing.T) {
	svc := NewKnowledgeService(
		memory.NewFactory(),
		failingEmbedder{},
		100,
		20,
		5,
		nopLogger{},
	)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, &dto.IngestDocumentRequest{Name: "退货政策", Content: "商品支持七天无理由退货。"})
	require.Error(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), stats.DocumentCount)
	require.Equal(t, int64(0), stats.ChunkCount)
}

func TestSearchRanksExactMatchFirst(t *testing.T) {
	svc := newTestKnowledgeService()
	ctx := context.Background()

	returnsDoc := "商品支持七天无理由退货，请保持包装完好。"
	shippingDoc := "订单发货后一般三天内送达，偏远地区五天。"

	_, err := svc.Ingest(ctx, &dto.IngestDocumentRequest{Name: "退货政策", Content: returnsDoc})
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, &dto.IngestDocumentRequest{Name: "配送说明", Content: shippingDoc})
	require.NoError(t, err)

	results, err := svc.Search(ctx, returnsDoc, 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "退货政策", results[0].DocumentName)
	require.InDelta(t, 1.0, results[0].Score, 1e-6)
	require.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchHonorsTopK(t *testing.T) {
	svc := newTestKnowledgeService()
	ctx := context.Background()

	docs := []string{
		"会员积分规则，消费一元积一分。",
		"发票在订单完成后可在线申请开具。",
		"客服工作时间为每天九点到二十一点。",
	}
	for i, content := range docs {
		_, err := svc.Ingest(ctx, &dto.IngestDocumentRequest{Name: string(rune('A' + i)), Content: content})
		require.NoError(t, err)
	}

	results, err := svc.Search(ctx, "积分", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestSearchTieBreakKeepsIngestOrder(t *testing.T) {
	svc := newTestKnowledgeService()
	ctx := context.Background()

	same := "重复的知识条目内容。"
	_, err := svc.Ingest(ctx, &dto.IngestDocumentRequest{Name: "第一篇", Content: same})
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, &dto.IngestDocumentRequest{Name: "第二篇", Content: same})
	require.NoError(t, err)

	results, err := svc.Search(ctx, same, 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, results[0].Score, results[1].Score)
	require.Equal(t, "第一篇", results[0].DocumentName)
	require.Equal(t, "第二篇", results[1].DocumentName)
}

func TestDeleteRemovesDocumentAndChunks(t *testing.T) {
	svc := newTestKnowledgeService()
	ctx := context.Background()

	res, err := svc.Ingest(ctx, &dto.IngestDocumentRequest{Name: "临时文档", Content: "将被删除的内容。"})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, res.Id)
	require.NoError(t, err)
	require.True(t, deleted)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), stats.DocumentCount)
	require.Equal(t, int64(0), stats.ChunkCount)

	// A second delete has nothing left to remove.
	deleted, err = svc.Delete(ctx, res.Id)
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestGetAndList(t *testing.T) {
	svc := newTestKnowledgeService()
	ctx := context.Background()

	res, err := svc.Ingest(ctx, &dto.IngestDocumentRequest{Name: "常见问题", Content: "问题与答案。"})
	require.NoError(t, err)

	detail, err := svc.Get(ctx, res.Id)
	require.NoError(t, err)
	require.NotNil(t, detail)
	require.Equal(t, "常见问题", detail.Name)
	require.Equal(t, "问题与答案。", detail.Content)
	require.Equal(t, int64(len("问题与答案。")), detail.Size)
	require.Equal(t, 1, detail.ChunkCount)

	missing, err := svc.Get(ctx, uuid.New())
	require.NoError(t, err)
	require.Nil(t, missing)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "常见问题", list[0].Name)
}
