package v1

import (
	"github.com/gogf/gf/v2/frame/g"

	"github.com/laborguard/laborguard/core/schema"
)

type ChatReq struct {
	g.Meta   `path:"/v1/chat" method:"post" tags:"chat" summary:"Ask a labor law question"`
	Question string `v:"required|length:1,2000" dc:"user question"`
}

type ChatRes struct {
	Answer    string            `json:"answer" dc:"answer text"`
	Citations []schema.Citation `json:"citations" dc:"cited articles in rank order"`
	Relevant  bool              `json:"relevant" dc:"whether the question is within the labor law domain"`
}
