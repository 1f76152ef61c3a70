package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 业务错误码：1xxx 参数错误，4xxx 资源不存在，5xxx 内部错误
const (
	CodeOK              = 0
	CodeBadRequest      = 1001
	CodeUnsupportedFile = 1002
	CodeFileTooLarge    = 1003
	CodeUnreadableFile  = 1004
	CodeNotFound        = 4004
	CodeInternal        = 5001
	CodeStoreFailure    = 5002
)

// Response 统一响应结构
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeOK,
		Message: "success",
		Data:    data,
	})
}

func errorResponse(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(httpStatus(code), Response{
		Code:    code,
		Message: message,
	})
}

func httpStatus(code int) int {
	switch {
	case code == CodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case code >= 1000 && code < 2000:
		return http.StatusBadRequest
	case code >= 4000 && code < 5000:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
