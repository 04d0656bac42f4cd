package generate

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/gogf/gf/v2/frame/g"
)

// Gate 领域门控：判定问题是否属于劳动法咨询范围。
// 实现可替换为LLM分类器，默认实现为关键词加权匹配。
type Gate interface {
	IsRelevant(ctx context.Context, question string) bool
}

// legalKeywords 法律关键词分级体系（权重0.2-0.5）
var legalKeywords = map[string]float64{
	// 核心概念（0.5）
	"劳动法":   0.5,
	"劳动合同":  0.5,
	"劳动合同法": 0.5,
	"劳动争议":  0.5,

	// 重要权益（0.4）
	"工资":   0.4,
	"加班费":  0.4,
	"工伤":   0.4,
	"赔偿":   0.4,
	"经济补偿": 0.4,
	"解除合同": 0.4,
	"终止合同": 0.4,

	// 主体对象（0.3）
	"用人单位": 0.3,
	"劳动者":  0.3,
	"雇主":   0.3,
	"员工":   0.3,
	"职工":   0.3,

	// 社保福利（0.3）
	"社保":   0.3,
	"社会保险": 0.3,
	"公积金":  0.3,
	"五险一金": 0.3,

	// 合同条款（0.3）
	"试用期":  0.3,
	"竞业限制": 0.3,
	"保密协议": 0.3,
	"劳务派遣": 0.3,

	// 休假制度（0.2）
	"年假": 0.2,
	"产假": 0.2,
	"病假": 0.2,
	"婚假": 0.2,
	"丧假": 0.2,

	// 工作条件（0.2）
	"工作时间": 0.2,
	"休息休假": 0.2,
	"工作环境": 0.2,

	// 争议解决
	"劳动仲裁": 0.3,
	"法院起诉": 0.3,
	"调解":   0.2,
}

// KeywordGate 基于分级关键词匹配的领域门控
type KeywordGate struct{}

// NewKeywordGate 创建关键词门控
func NewKeywordGate() *KeywordGate {
	return &KeywordGate{}
}

// IsRelevant 判断问题是否属于劳动法咨询。
// 匹配阈值随问题长度动态上调：基础0.35，每10字增加0.02，最多增加0.1。
func (kg *KeywordGate) IsRelevant(ctx context.Context, question string) bool {
	length := utf8.RuneCountInString(question)

	baseThreshold := 0.35
	lengthFactor := float64(length) / 10 * 0.02
	if lengthFactor > 0.1 {
		lengthFactor = 0.1
	}
	dynamicThreshold := baseThreshold + lengthFactor

	totalScore := 0.0
	var matched []string
	for keyword, weight := range legalKeywords {
		if strings.Contains(question, keyword) {
			totalScore += weight
			matched = append(matched, keyword)
		}
	}

	isLegal := totalScore >= dynamicThreshold
	g.Log().Debugf(ctx, "domain gate: length=%d matched=%v score=%.2f threshold=%.2f relevant=%v",
		length, matched, totalScore, dynamicThreshold, isLegal)
	return isLegal
}
