package order

import (
	apperrors "github.com/xiebiao/tintayhojas/pkg/errors"
)

// RedirectHome 无权查看订单时建议返回的页面
const RedirectHome = "/"

// 订单领域错误定义
var (
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在")

	// ErrNotOwner 查看他人的订单
	ErrNotOwner = apperrors.New(apperrors.ErrCodeForbidden, "无权查看该订单").WithRedirect(RedirectHome)

	ErrInvalidStatus   = apperrors.ErrInvalidOrderStatus
	ErrAddressRequired = apperrors.New(apperrors.ErrCodeInvalidParams, "收货地址不能为空")
	ErrInvalidTotal    = apperrors.New(apperrors.ErrCodeInvalidParams, "订单金额不能为负数")
	ErrNoLines         = apperrors.New(apperrors.ErrCodeInvalidParams, "订单明细不能为空")
	ErrInvalidTaxRate  = apperrors.New(apperrors.ErrCodeInvalidParams, "税率必须在0到1之间")
)
