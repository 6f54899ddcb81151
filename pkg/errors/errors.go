package errors

import (
	"errors"
	"fmt"
)

// AppError 应用错误
// Code给客户端判断错误类型,Message是可直接展示的提示,
// Err是内部错误,只进日志不返回给客户端
type AppError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"` // 失败后建议返回的页面
	Err      error  `json:"-"`

	origin *AppError // WithMessage/WithRedirect复制出的错误指向原始错误
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 预定义错误被WithMessage/WithRedirect复制后仍能与原错误匹配
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.root() == t.root()
}

func (e *AppError) root() *AppError {
	if e.origin != nil {
		return e.origin
	}
	return e
}

// New 创建AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装底层错误(数据库、网络等),对外隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// WithMessage 复制错误并替换提示信息(错误码不变)
func (e *AppError) WithMessage(format string, args ...interface{}) *AppError {
	cp := *e
	cp.origin = e.root()
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// WithRedirect 复制错误并附带跳转提示
func (e *AppError) WithRedirect(path string) *AppError {
	cp := *e
	cp.origin = e.root()
	cp.Redirect = path
	return &cp
}

// =========================================
// 错误码定义
// =========================================
// - 4xxxx: 客户端错误
// - 5xxxx: 服务端错误

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误
	ErrCodeStorageError  = 50003 // 文件存储错误

	// 认证授权错误（40100-40199）
	ErrCodeUnauthorized       = 40100 // 未登录
	ErrCodeInvalidToken       = 40101 // Token无效
	ErrCodeTokenExpired       = 40102 // Token过期
	ErrCodeInvalidPassword    = 40103 // 密码错误
	ErrCodeForbidden          = 40104 // 无权限
	ErrCodeSuperuserProtected = 40105 // 超级管理员不可删除
	ErrCodeStaffRequired      = 40106 // 需要管理员权限
	ErrCodeInvalidCredentials = 40107 // 用户名或密码错误
	ErrCodeTooManyRequests    = 40129 // 请求过于频繁

	// 资源错误（40400-40499）
	ErrCodeNotFound           = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound       = 40401 // 用户不存在
	ErrCodeBookNotFound       = 40402 // 图书不存在
	ErrCodeOrderNotFound      = 40403 // 订单不存在
	ErrCodeAuthorNotFound     = 40404 // 作者不存在
	ErrCodeCollectionNotFound = 40405 // 书系不存在
	ErrCodeSupplierNotFound   = 40406 // 供应商不存在
	ErrCodeCartItemNotFound   = 40407 // 购物车条目不存在
	ErrCodeReviewNotFound     = 40408 // 评价不存在
	ErrCodeCartNotFound       = 40409 // 购物车不存在

	// 业务规则错误（40000-40099）
	ErrCodeBusinessError      = 40000 // 业务错误(通用)
	ErrCodeInsufficientStock  = 40001 // 库存不足
	ErrCodeInvalidOrderStatus = 40002 // 订单状态非法
	ErrCodeEmailDuplicate     = 40003 // 邮箱已存在
	ErrCodeUsernameDuplicate  = 40004 // 用户名已存在
	ErrCodeWeakPassword       = 40005 // 密码强度不足
	ErrCodeOutOfStock         = 40006 // 商品已售罄
	ErrCodeCartEmpty          = 40007 // 购物车为空
	ErrCodeReviewNotAllowed   = 40008 // 未购买不能评价
	ErrCodeDuplicateEntry     = 40009 // 重复记录(通用)
	ErrCodeReviewDuplicate    = 40010 // 已评价过
	ErrCodeNoMoreStock        = 40011 // 已达库存上限
	ErrCodeInvalidImage       = 40012 // 图片格式不支持

	// 参数错误（40900-40999）
	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 参数绑定失败
)

// =========================================
// 预定义错误
// =========================================

var (
	// 系统错误
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError    = New(ErrCodeRedisError, "缓存服务错误")

	// 认证授权
	ErrUnauthorized       = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken       = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired       = New(ErrCodeTokenExpired, "Token已过期")
	ErrInvalidPassword    = New(ErrCodeInvalidPassword, "密码错误")
	ErrInvalidCredentials = New(ErrCodeInvalidCredentials, "用户名或密码错误")
	ErrForbidden          = New(ErrCodeForbidden, "无权限访问")
	ErrStaffRequired      = New(ErrCodeStaffRequired, "需要管理员权限")
	ErrTooManyRequests    = New(ErrCodeTooManyRequests, "请求过于频繁，请稍后再试")

	// 资源不存在
	ErrNotFound      = New(ErrCodeNotFound, "资源不存在")
	ErrUserNotFound  = New(ErrCodeUserNotFound, "用户不存在")
	ErrBookNotFound  = New(ErrCodeBookNotFound, "图书不存在")
	ErrOrderNotFound = New(ErrCodeOrderNotFound, "订单不存在")

	// 业务规则
	ErrInsufficientStock  = New(ErrCodeInsufficientStock, "库存不足")
	ErrInvalidOrderStatus = New(ErrCodeInvalidOrderStatus, "订单状态不合法")
	ErrEmailDuplicate     = New(ErrCodeEmailDuplicate, "邮箱已被注册")
	ErrUsernameDuplicate  = New(ErrCodeUsernameDuplicate, "用户名已被使用")
	ErrWeakPassword       = New(ErrCodeWeakPassword, "密码强度不足（需8-20位，包含字母和数字）")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// HasCode 判断错误链上是否有指定错误码的AppError
func HasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
