package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultDashScopeURL   = "https://dashscope.aliyuncs.com/api/v1/services/embeddings/text-embedding/text-embedding"
	defaultDashScopeModel = "text-embedding-v3"

	// DashScope caps one embedding request at 10 texts; larger batches are
	// split into sequential calls.
	dashScopeBatchSize = 10
)

// DashScopeProvider implements Provider against the Alibaba DashScope
// text-embedding API (Qwen models).
type DashScopeProvider struct {
	APIKey  string
	BaseURL string
	Model   string
	Client  *http.Client
}

var _ Provider = (*DashScopeProvider)(nil)

func NewDashScopeProvider(apiKey, baseURL, model string) *DashScopeProvider {
	if baseURL == "" {
		baseURL = defaultDashScopeURL
	}
	if model == "" {
		model = defaultDashScopeModel
	}
	return &DashScopeProvider{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   model,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type dashScopeRequest struct {
	Model string              `json:"model"`
	Input dashScopeInputTexts `json:"input"`
}

type dashScopeInputTexts struct {
	Texts []string `json:"texts"`
}

type dashScopeResponse struct {
	Output struct {
		Embeddings []struct {
			TextIndex int       `json:"text_index"`
			Embedding []float64 `json:"embedding"`
		} `json:"embeddings"`
	} `json:"output"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (p *DashScopeProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.embedCall(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (p *DashScopeProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += dashScopeBatchSize {
		end := i + dashScopeBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := p.embedCall(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", i, end, err)
		}
		results = append(results, vectors...)
	}
	return results, nil
}

func (p *DashScopeProvider) embedCall(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := dashScopeRequest{
		Model: p.Model,
		Input: dashScopeInputTexts{Texts: texts},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dashscope embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dashscope embedding error (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	var dsResp dashScopeResponse
	if err := json.Unmarshal(bodyBytes, &dsResp); err != nil {
		return nil, err
	}
	if dsResp.Code != "" {
		return nil, fmt.Errorf("dashscope embedding error: %s: %s", dsResp.Code, dsResp.Message)
	}
	if len(dsResp.Output.Embeddings) != len(texts) {
		return nil, fmt.Errorf("dashscope returned %d embeddings for %d texts", len(dsResp.Output.Embeddings), len(texts))
	}

	// text_index keeps input order even if the API reorders results.
	vectors := make([][]float32, len(texts))
	for _, e := range dsResp.Output.Embeddings {
		if e.TextIndex < 0 || e.TextIndex >= len(texts) {
			return nil, fmt.Errorf("dashscope returned out-of-range text_index %d", e.TextIndex)
		}
		values := make([]float32, len(e.Embedding))
		for i, v := range e.Embedding {
			values[i] = float32(v)
		}
		vectors[e.TextIndex] = Normalize(values)
	}
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("dashscope returned no embedding for text %d", i)
		}
	}
	return vectors, nil
}
