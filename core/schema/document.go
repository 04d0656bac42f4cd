package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// LegalDocument 表示一部法律/法规的入库记录
type LegalDocument struct {
	// DocumentID 文档唯一标识（如 "labor_law"）
	DocumentID string `json:"document_id"`
	// Title 法律名称（如 "中华人民共和国劳动法"）
	Title string `json:"title"`
	// PromulgatedAt 颁布日期（可选，ISO 8601）
	PromulgatedAt string `json:"promulgated_at,omitempty"`
	// RevisedAt 最近修订日期（可选）
	RevisedAt string `json:"revised_at,omitempty"`
	// Articles 条文序列，按条号排列
	Articles []Article `json:"articles"`
}

// Article 一条法律条文
type Article struct {
	// Number 条号（如 "第一条"、"1"），同一文档内唯一
	Number string `json:"number"`
	// Text 条文全文
	Text string `json:"text"`
}

// Chunk 可检索的文本切片，通常等于一条条文，超长条文会切为多个子片段
type Chunk struct {
	// StableID 结构化稳定标识，入库幂等的依据
	StableID string
	// Text 切片内容
	Text string
	// DocumentID 所属文档ID
	DocumentID string
	// DocumentTitle 所属法律名称
	DocumentTitle string
	// ArticleNumber 来源条号
	ArticleNumber string
	// ChunkIndex 在该条文内的切片序号（从0开始）
	ChunkIndex int
	// Fingerprint 规范化文本的内容指纹，用于检测文本变更
	Fingerprint string
}

// RetrievalMethod 候选切片的召回途径
type RetrievalMethod string

const (
	MethodDense  RetrievalMethod = "dense"
	MethodSparse RetrievalMethod = "sparse"
	// MethodHybrid 同时被稠密与稀疏检索命中
	MethodHybrid RetrievalMethod = "hybrid"
)

// RetrievalCandidate 单次查询的候选切片，仅在请求生命周期内存在
type RetrievalCandidate struct {
	Chunk  Chunk
	Score  float64
	Method RetrievalMethod
}

// RankedPassage 经过rerank的段落，仅保留分数达标者
type RankedPassage struct {
	Candidate RetrievalCandidate
	// RerankScore 重排相关性分数，[0,1]
	RerankScore float64
	// RetrievalRank 初次召回时的名次，rerank并列时的稳定次序依据
	RetrievalRank int
}

// Citation 答案到来源条文的引用
type Citation struct {
	DocumentID    string `json:"document_id"`
	DocumentTitle string `json:"document_title"`
	ArticleNumber string `json:"article_number"`
	StableID      string `json:"stable_id"`
}

// AnswerResult 一次问答的最终输出
type AnswerResult struct {
	// Answer 用户可见的回答文本（已剥离思考标签）
	Answer string `json:"answer"`
	// RawAnswer 模型原始输出，含 <think> 内容（如有）
	RawAnswer string `json:"raw_answer,omitempty"`
	// Citations 引用，按段落名次排序
	Citations []Citation `json:"citations"`
	// Relevant 问题是否属于服务范围内的劳动法领域
	Relevant bool `json:"relevant"`
	// Errored 是否因内部错误而未能作答（与领域外拒答严格区分）
	Errored bool `json:"errored"`
	// Stage 出错时所处的流水线阶段
	Stage string `json:"stage,omitempty"`
	// ErrKind 出错时的错误类别（业务错误码字符串）
	ErrKind string `json:"err_kind,omitempty"`
}

// NormalizeText 规范化文本用于指纹计算：压缩空白并去除首尾空白
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// StableChunkID 由(文档标识, 条号, 切片序号)确定性生成切片ID。
// 刻意不掺入文本内容：文本修改只改变指纹，不改变身份。
func StableChunkID(documentID, articleNumber string, chunkIndex int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", documentID, articleNumber, chunkIndex)))
	return hex.EncodeToString(sum[:])
}

// Fingerprint 计算规范化文本的内容指纹
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(NormalizeText(text)))
	return hex.EncodeToString(sum[:])
}
