package generate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/gogf/gf/v2/frame/g"

	"github.com/laborguard/laborguard/core/common"
	"github.com/laborguard/laborguard/core/provider"
	"github.com/laborguard/laborguard/core/schema"
)

const (
	// RefusalMessage 领域外问题的固定拒答文案
	RefusalMessage = "对不起，我暂时无法回答劳动法之外的问题哦～"
	// EmptyResultMessage 未召回任何达标条文时的固定回复
	EmptyResultMessage = "⚠️ 未找到相关法律条文，请尝试调整问题描述或咨询专业律师。"

	systemPrompt = "你是专业的劳动法咨询助手。请严格依据给出的法律条文回答用户问题，" +
		"并在回答中标注所引用条文的出处（如《中华人民共和国劳动法》第三十六条）。" +
		"条文未涉及的内容不要臆造，必要时建议用户咨询专业律师。"
)

// thinkPattern 思考型模型输出中的<think>标签
var thinkPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)

// AnswerGenerator 答案生成阶段：领域门控、提示词组装、引用提取
type AnswerGenerator struct {
	generator provider.Generator
	gate      Gate
}

// NewAnswerGenerator 创建答案生成器
func NewAnswerGenerator(generator provider.Generator, gate Gate) *AnswerGenerator {
	return &AnswerGenerator{
		generator: generator,
		gate:      gate,
	}
}

// Generate 基于重排后的段落生成回答。领域外问题直接拒答不调用模型；
// 无达标段落同样不调用模型，relevance为false；
// 正常路径生成回答并按段落名次附上回答实际引用的条文。
func (ag *AnswerGenerator) Generate(ctx context.Context, question string, passages []schema.RankedPassage) (schema.AnswerResult, error) {
	if !ag.gate.IsRelevant(ctx, question) {
		g.Log().Infof(ctx, "question outside labor law domain, refusing: %s", question)
		return schema.AnswerResult{
			Answer:    RefusalMessage,
			Citations: []schema.Citation{},
			Relevant:  false,
		}, nil
	}

	if len(passages) == 0 {
		return schema.AnswerResult{
			Answer:    EmptyResultMessage,
			Citations: []schema.Citation{},
			Relevant:  false,
		}, nil
	}

	raw, err := ag.generator.Generate(ctx, systemPrompt, buildUserPrompt(question, passages))
	if err != nil {
		return schema.AnswerResult{}, err
	}

	answer := StripThink(raw)
	return schema.AnswerResult{
		Answer:    answer,
		RawAnswer: raw,
		Citations: buildCitations(answer, passages),
		Relevant:  true,
	}, nil
}

// buildUserPrompt 组装提示词：编号条文块在前，问题在后
func buildUserPrompt(question string, passages []schema.RankedPassage) string {
	var sb strings.Builder
	sb.WriteString("参考条文：\n")
	for i, p := range passages {
		chunk := p.Candidate.Chunk
		sb.WriteString(fmt.Sprintf("【%d】《%s》%s：%s\n", i+1, chunk.DocumentTitle, chunk.ArticleNumber, chunk.Text))
	}
	sb.WriteString("\n问题：")
	sb.WriteString(question)
	return sb.String()
}

// buildCitations 按段落名次提取回答中实际出现的条文引用，同一条文只引用一次。
// 回答未提及的段落不产生引用，以条文编号子串匹配判定。
func buildCitations(answer string, passages []schema.RankedPassage) []schema.Citation {
	citations := make([]schema.Citation, 0, len(passages))
	for _, p := range passages {
		chunk := p.Candidate.Chunk
		if chunk.ArticleNumber == "" || !strings.Contains(answer, chunk.ArticleNumber) {
			continue
		}
		citations = append(citations, schema.Citation{
			DocumentID:    chunk.DocumentID,
			DocumentTitle: chunk.DocumentTitle,
			ArticleNumber: chunk.ArticleNumber,
			StableID:      chunk.StableID,
		})
	}
	return common.RemoveDuplicates(citations, func(c schema.Citation) string {
		return c.DocumentID + "|" + c.ArticleNumber
	})
}

// StripThink 剥离思考型模型输出中的<think>内容并去除首尾空白
func StripThink(answer string) string {
	return strings.TrimSpace(thinkPattern.ReplaceAllString(answer, ""))
}
