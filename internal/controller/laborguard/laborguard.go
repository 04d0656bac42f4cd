package laborguard

import (
	"github.com/laborguard/laborguard/core/convert"
	"github.com/laborguard/laborguard/core/ingest"
	"github.com/laborguard/laborguard/core/rag"
	"github.com/laborguard/laborguard/core/vector_store"
	"github.com/laborguard/laborguard/internal/registry"
)

// ControllerV1 劳动法问答服务 v1 接口控制器
type ControllerV1 struct {
	orchestrator *rag.Orchestrator
	pipeline     *ingest.Pipeline
	converter    *convert.Converter
	store        vector_store.VectorStore
	registry     *registry.Registry // 可为 nil（未配置登记库时）
}

// NewV1 创建 v1 控制器
func NewV1(orchestrator *rag.Orchestrator, pipeline *ingest.Pipeline, converter *convert.Converter, store vector_store.VectorStore, reg *registry.Registry) *ControllerV1 {
	return &ControllerV1{
		orchestrator: orchestrator,
		pipeline:     pipeline,
		converter:    converter,
		store:        store,
		registry:     reg,
	}
}
