package rag

import (
	"context"

	"github.com/gogf/gf/v2/frame/g"
	"github.com/google/uuid"

	"github.com/laborguard/laborguard/core/errors"
	"github.com/laborguard/laborguard/core/generate"
	"github.com/laborguard/laborguard/core/rerank"
	"github.com/laborguard/laborguard/core/retriever"
	"github.com/laborguard/laborguard/core/schema"
)

// Stage 问答流水线阶段
type Stage string

const (
	StageReceived   Stage = "RECEIVED"
	StageRetrieving Stage = "RETRIEVING"
	StageReranking  Stage = "RERANKING"
	StageGenerating Stage = "GENERATING"
	StageCompleted  Stage = "COMPLETED"
	StageErrored    Stage = "ERRORED"
)

// Orchestrator 问答编排器，驱动检索、重排、生成的阶段流转。
// 每个请求独立走完整个状态机，任一阶段失败立即转入ERRORED。
type Orchestrator struct {
	retriever *retriever.HybridRetriever
	reranker  *rerank.Reranker
	generator *generate.AnswerGenerator
	gate      generate.Gate
}

// NewOrchestrator 创建问答编排器
func NewOrchestrator(r *retriever.HybridRetriever, rr *rerank.Reranker, gen *generate.AnswerGenerator, gate generate.Gate) *Orchestrator {
	return &Orchestrator{
		retriever: r,
		reranker:  rr,
		generator: gen,
		gate:      gate,
	}
}

// Answer 执行一次完整问答。领域外问题在入口直接拒答，
// 不消耗任何检索与生成调用。内部错误时返回的结果带ERRORED标记、
// 出错阶段与错误类别，同时返回错误本身。
func (o *Orchestrator) Answer(ctx context.Context, question string) (schema.AnswerResult, error) {
	traceID := uuid.New().String()
	stage := StageReceived
	g.Log().Infof(ctx, "[%s] question received: %s", traceID, question)

	if question == "" {
		return o.errored(ctx, traceID, stage, errors.New(errors.ErrInvalidParameter, "question must not be empty"))
	}

	if !o.gate.IsRelevant(ctx, question) {
		g.Log().Infof(ctx, "[%s] question outside domain, refused at entry", traceID)
		return schema.AnswerResult{
			Answer:    generate.RefusalMessage,
			Citations: []schema.Citation{},
			Relevant:  false,
			Stage:     string(StageCompleted),
		}, nil
	}

	stage = StageRetrieving
	candidates, err := o.retriever.Retrieve(ctx, question)
	if err != nil {
		return o.errored(ctx, traceID, stage, err)
	}
	g.Log().Infof(ctx, "[%s] retrieved %d candidates", traceID, len(candidates))

	stage = StageReranking
	passages, err := o.reranker.Rerank(ctx, question, candidates)
	if err != nil {
		return o.errored(ctx, traceID, stage, err)
	}
	g.Log().Infof(ctx, "[%s] %d passages kept after rerank", traceID, len(passages))

	stage = StageGenerating
	result, err := o.generator.Generate(ctx, question, passages)
	if err != nil {
		return o.errored(ctx, traceID, stage, err)
	}

	result.Stage = string(StageCompleted)
	g.Log().Infof(ctx, "[%s] answer completed, %d citations", traceID, len(result.Citations))
	return result, nil
}

func (o *Orchestrator) errored(ctx context.Context, traceID string, stage Stage, err error) (schema.AnswerResult, error) {
	code := errors.CodeOf(err)
	g.Log().Errorf(ctx, "[%s] pipeline failed at %s: %v", traceID, stage, err)

	return schema.AnswerResult{
		Citations: []schema.Citation{},
		Errored:   true,
		Stage:     string(stage),
		ErrKind:   code.String(),
	}, err
}
