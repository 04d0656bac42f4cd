package cmd

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/laborguard/laborguard/core/errors"
)

func TestErrorResponseHidesCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp 10.0.0.8:19530: connection refused")
	appErr := errors.GetAppError(errors.Wrap(errors.ErrRetrieval, cause, "failed to query vector store"))

	status, body := errorResponse(appErr)

	assert.Equal(t, 500, status)
	assert.Equal(t, int(errors.ErrRetrieval), body.Code)
	// 响应体只给错误类别，底层原因不外泄
	assert.Equal(t, "RetrievalError", body.Message)
	assert.NotContains(t, body.Message, "10.0.0.8")
	assert.NotContains(t, body.Message, "connection refused")
}

func TestErrorResponseClientErrors(t *testing.T) {
	status, body := errorResponse(errors.New(errors.ErrInvalidParameter, "question must not be empty"))
	assert.Equal(t, 400, status)
	assert.Equal(t, "InvalidParameterError", body.Message)

	status, body = errorResponse(errors.Newf(errors.ErrNotFound, "document %s not found", "labor_law"))
	assert.Equal(t, 404, status)
	assert.Equal(t, "NotFoundError", body.Message)
}
