package response

import (
	"net/http"

	"github.com/Dorcaemmanuel/PeerPayChat/pkg/bizerr"

	"github.com/gin-gonic/gin"
)

const (
	CodeSuccess     = 0
	CodeParamError  = 400
	CodeServerError = 500
)

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

func ParamError(c *gin.Context, message string) {
	Error(c, CodeParamError, message)
}

func ServerError(c *gin.Context, message string) {
	Error(c, CodeServerError, message)
}

// BizError 按业务错误返回对应错误码；非业务错误统一按服务器错误处理
func BizError(c *gin.Context, err error) {
	if code := bizerr.CodeOf(err); code != 0 {
		Error(c, code, err.Error())
		return
	}
	ServerError(c, err.Error())
}
