package v1

import (
	"github.com/gogf/gf/v2/frame/g"
)

type HealthReq struct {
	g.Meta `path:"/v1/health" method:"get" tags:"system" summary:"Health check"`
}

type HealthRes struct {
	Status string `json:"status" dc:"ok when the service is ready"`
}
