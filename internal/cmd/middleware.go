package cmd

import (
	"net/http"

	"github.com/gogf/gf/v2/errors/gcode"
	"github.com/gogf/gf/v2/errors/gerror"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/net/ghttp"

	"github.com/laborguard/laborguard/core/errors"
)

// MiddlewareHandlerResponse is the default middleware handling handler response object and its error.
func MiddlewareHandlerResponse(r *ghttp.Request) {
	r.Middleware.Next()

	// There's custom buffer content, it then exits current handler.
	if r.Response.BufferLength() > 0 || r.Response.Writer.BytesWritten() > 0 {
		return
	}

	var (
		msg  string
		err  = r.GetError()
		res  = r.GetHandlerResponse()
		code = gerror.Code(err)
	)
	if err != nil {
		// 业务错误码映射到HTTP状态与响应码，错误详情只进日志
		if appErr := errors.GetAppError(err); appErr != nil {
			g.Log().Errorf(r.Context(), "request failed, code: %d, detail: %s", appErr.Code, appErr.Message)
			status, body := errorResponse(appErr)
			r.Response.WriteStatus(status)
			r.Response.WriteJson(body)
			return
		}
		if code == gcode.CodeNil {
			code = gcode.CodeInternalError
		}
		msg = err.Error()
	} else {
		if r.Response.Status > 0 && r.Response.Status != http.StatusOK {
			switch r.Response.Status {
			case http.StatusNotFound:
				code = gcode.CodeNotFound
			case http.StatusForbidden:
				code = gcode.CodeNotAuthorized
			default:
				code = gcode.CodeUnknown
			}
			// It creates an error as it can be retrieved by other middlewares.
			err = gerror.NewCode(code, msg)
			r.SetError(err)
		} else {
			code = gcode.CodeOK
		}
		msg = code.Message()
	}
	r.Response.WriteJson(ghttp.DefaultHandlerResponse{
		Code:    code.Code(),
		Message: msg,
		Data:    res,
	})
}

// errorResponse 业务错误到响应体的映射。响应只携带错误类别，
// 底层原因（连接地址、SQL等）不写入HTTP响应。
func errorResponse(appErr *errors.AppError) (int, ghttp.DefaultHandlerResponse) {
	return appErr.Code.HTTPStatusCode(), ghttp.DefaultHandlerResponse{
		Code:    int(appErr.Code),
		Message: appErr.Code.String(),
		Data:    nil,
	}
}
