package laborguard

import (
	"context"

	v1 "github.com/laborguard/laborguard/api/laborguard/v1"
)

// Chat 劳动法问答接口
func (c *ControllerV1) Chat(ctx context.Context, req *v1.ChatReq) (res *v1.ChatRes, err error) {
	result, err := c.orchestrator.Answer(ctx, req.Question)
	if err != nil {
		return nil, err
	}

	return &v1.ChatRes{
		Answer:    result.Answer,
		Citations: result.Citations,
		Relevant:  result.Relevant,
	}, nil
}
