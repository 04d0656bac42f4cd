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

// httpReranker 通用 /rerank 接口客户端（DashScope gte-rerank等）
type httpReranker struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// rerankRequest rerank API请求结构
type rerankRequest struct {
	Model           string   `json:"model"`
	Query           string   `json:"query"`
	Documents       []string `json:"documents"`
	TopN            int      `json:"top_n"`
	ReturnDocuments bool     `json:"return_documents"`
}

// rerankResultItem rerank结果项
type rerankResultItem struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

// rerankResponse rerank API响应结构
type rerankResponse struct {
	ID      string              `json:"id"`
	Results []*rerankResultItem `json:"results"`
}

func newHTTPReranker(conf config.ProviderConfig) (*httpReranker, error) {
	if conf.BaseURL == "" {
		return nil, errors.New(errors.ErrInvalidConfig, "rerank baseURL is required")
	}
	model := conf.Model
	if model == "" {
		model = "rerank-v1"
	}

	// rerank 通常比 embedding 快
	httpClient := &http.Client{
		Timeout: 2 * time.Minute,
		Transport: &http.Transport{
			Dial: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).Dial,
			TLSHandshakeTimeout:   30 * time.Second,
			ResponseHeaderTimeout: 60 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			IdleConnTimeout:       90 * time.Second,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   20,
		},
	}

	return &httpReranker{
		apiKey:     conf.APIKey,
		baseURL:    conf.BaseURL,
		model:      model,
		httpClient: httpClient,
	}, nil
}

// Rerank 单次批量调用，返回整批文档的相关性分数
func (r *httpReranker) Rerank(ctx context.Context, query string, documents []string) ([]RerankScore, error) {
	if len(documents) == 0 {
		return []RerankScore{}, nil
	}

	// top_n取全量，截断与阈值过滤由上层流水线负责
	req := rerankRequest{
		Model:           r.model,
		Query:           query,
		Documents:       documents,
		TopN:            len(documents),
		ReturnDocuments: false,
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Newf(errors.ErrRerankFailed, "failed to marshal request: %v", err)
	}

	url := r.baseURL + "/rerank"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, errors.Newf(errors.ErrRerankFailed, "failed to create request: %v", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Newf(errors.ErrRerankFailed, "failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp apiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			return nil, errors.Newf(errors.ErrRerankFailed, "HTTP %d: failed to decode error response: %v", resp.StatusCode, err)
		}
		return nil, errors.Newf(errors.ErrRerankFailed, "API error (HTTP %d): %s", resp.StatusCode, errResp.Error.Message)
	}

	var rerankResp rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&rerankResp); err != nil {
		return nil, errors.Newf(errors.ErrRerankFailed, "failed to decode response: %v", err)
	}

	result := make([]RerankScore, 0, len(rerankResp.Results))
	for _, res := range rerankResp.Results {
		if res.Index < 0 || res.Index >= len(documents) {
			return nil, errors.Newf(errors.ErrRerankFailed, "invalid result index: %d", res.Index)
		}
		result = append(result, RerankScore{
			Index: res.Index,
			Score: res.RelevanceScore,
		})
	}

	return result, nil
}
