package response

import (
	"net/http"

	"github.com/MonkyMars/gecho"
	"github.com/gin-gonic/gin"
	apperrors "github.com/xiebiao/tintayhojas/pkg/errors"
)

// Response 统一响应结构
// Code是业务错误码（非HTTP状态码），Message是用户可见的提示，
// Redirect是失败时建议客户端回到的页面
type Response struct {
	Code     int         `json:"code"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
}

var logger *gecho.Logger

// SetLogger 安装用于记录内部错误的日志器,未安装时内部错误不落日志
func SetLogger(l *gecho.Logger) {
	logger = l
}

// Success 成功响应（Code=0表示成功）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	order, err := h.checkout.Commit(ctx, req)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)

	if appErr.Err != nil && logger != nil {
		logger.Error("request failed",
			gecho.Field("code", appErr.Code),
			gecho.Field("path", c.Request.URL.Path),
			gecho.Field("request_id", c.GetString("request_id")),
			gecho.Field("error", appErr.Err.Error()),
		)
	}

	c.JSON(http.StatusOK, Response{
		Code:     appErr.Code,
		Message:  appErr.Message,
		Redirect: appErr.Redirect,
	})
}

// ErrorWithCode 自定义错误码和消息
func ErrorWithCode(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithRedirect 自定义错误码和消息,并附带跳转提示
func ErrorWithRedirect(c *gin.Context, code int, message, redirect string) {
	c.JSON(http.StatusOK, Response{
		Code:     code,
		Message:  message,
		Redirect: redirect,
	})
}

// =========================================
// 分页响应结构
// =========================================

// PageData 分页数据封装
type PageData struct {
	List       interface{} `json:"list"`        // 数据列表
	Total      int64       `json:"total"`       // 总记录数
	Page       int         `json:"page"`        // 当前页码
	PageSize   int         `json:"page_size"`   // 每页大小
	TotalPages int         `json:"total_pages"` // 总页数
}

// NewPageData 创建分页数据
func NewPageData(list interface{}, total int64, page, pageSize int) *PageData {
	if pageSize <= 0 {
		pageSize = 1
	}
	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}

	return &PageData{
		List:       list,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	Success(c, NewPageData(list, total, page, pageSize))
}
