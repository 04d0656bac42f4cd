package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/laborguard/laborguard/core/config"
	"github.com/laborguard/laborguard/core/errors"
)

// httpEmbedder OpenAI兼容 /embeddings 接口的embedding客户端（DashScope等）
type httpEmbedder struct {
	apiKey     string
	baseURL    string
	model      string
	dim        int
	httpClient *http.Client
}

// embeddingRequest OpenAI embedding API请求结构
type embeddingRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions *int     `json:"dimensions,omitempty"`
}

// embeddingResponse OpenAI embedding API响应结构
type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
		Object    string    `json:"object"`
	} `json:"data"`
	Model  string `json:"model"`
	Object string `json:"object"`
	Usage  struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// apiErrorResponse API错误响应
type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code,omitempty"`
	} `json:"error"`
}

func newHTTPEmbedder(conf config.ProviderConfig, dim int) (*httpEmbedder, error) {
	if conf.APIKey == "" {
		return nil, errors.New(errors.ErrInvalidConfig, "embedding apiKey is required")
	}
	if conf.BaseURL == "" {
		return nil, errors.New(errors.ErrInvalidConfig, "embedding baseURL is required")
	}
	if conf.Model == "" {
		return nil, errors.New(errors.ErrInvalidConfig, "embedding model is required")
	}

	// 创建自定义HTTP客户端，设置合理的超时时间
	httpClient := &http.Client{
		Timeout: 5 * time.Minute, // 总体超时5分钟
		Transport: &http.Transport{
			Dial: (&net.Dialer{
				Timeout:   30 * time.Second, // 连接超时
				KeepAlive: 30 * time.Second,
			}).Dial,
			TLSHandshakeTimeout:   30 * time.Second,
			ResponseHeaderTimeout: 2 * time.Minute,
			ExpectContinueTimeout: 1 * time.Second,
			IdleConnTimeout:       90 * time.Second,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
		},
	}

	return &httpEmbedder{
		apiKey:     conf.APIKey,
		baseURL:    conf.BaseURL,
		model:      conf.Model,
		dim:        dim,
		httpClient: httpClient,
	}, nil
}

func (e *httpEmbedder) Dimension() int {
	return e.dim
}

// EmbedStrings 批量向量化，并校验返回维度与索引配置一致
func (e *httpEmbedder) EmbedStrings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	req := embeddingRequest{
		Input:      texts,
		Model:      e.model,
		Dimensions: &e.dim,
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Newf(errors.ErrEmbeddingFailed, "failed to marshal request: %v", err)
	}

	url := e.baseURL + "/embeddings"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, errors.Newf(errors.ErrEmbeddingFailed, "failed to create request: %v", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Newf(errors.ErrEmbeddingFailed, "failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp apiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			return nil, errors.Newf(errors.ErrEmbeddingFailed, "HTTP %d: failed to decode error response: %v", resp.StatusCode, err)
		}
		return nil, errors.Newf(errors.ErrEmbeddingFailed, "API error (HTTP %d): %s", resp.StatusCode, errResp.Error.Message)
	}

	var embResp embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, errors.Newf(errors.ErrEmbeddingFailed, "failed to decode response: %v", err)
	}

	if len(embResp.Data) != len(texts) {
		return nil, errors.Newf(errors.ErrEmbeddingFailed, "response data length (%d) doesn't match input length (%d)", len(embResp.Data), len(texts))
	}

	result := make([][]float32, len(texts))
	for _, data := range embResp.Data {
		if data.Index >= len(result) {
			return nil, errors.Newf(errors.ErrEmbeddingFailed, "invalid embedding index: %d", data.Index)
		}
		if len(data.Embedding) != e.dim {
			return nil, errors.Newf(errors.ErrDimensionMismatch, "embedding dimension %d does not match configured dimension %d", len(data.Embedding), e.dim)
		}
		float32Vec := make([]float32, len(data.Embedding))
		for i, v := range data.Embedding {
			float32Vec[i] = float32(v)
		}
		result[data.Index] = float32Vec
	}

	return result, nil
}
