package cart

import (
	apperrors "github.com/xiebiao/tintayhojas/pkg/errors"
)

// 失败后建议客户端返回的页面
const (
	RedirectCart    = "/cart"
	RedirectCatalog = "/catalog"
)

// 购物车领域错误定义
var (
	ErrCartNotFound = apperrors.New(apperrors.ErrCodeCartNotFound, "购物车不存在")
	ErrItemNotFound = apperrors.New(apperrors.ErrCodeCartItemNotFound, "购物车条目不存在").WithRedirect(RedirectCart)

	// ErrItemExists (cart_id, book_id)唯一索引冲突
	ErrItemExists = apperrors.New(apperrors.ErrCodeDuplicateEntry, "购物车中已有该图书")

	ErrOutOfStock  = apperrors.New(apperrors.ErrCodeOutOfStock, "该图书已售罄").WithRedirect(RedirectCatalog)
	ErrNoMoreStock = apperrors.New(apperrors.ErrCodeNoMoreStock, "已达到库存上限，无法继续增加").WithRedirect(RedirectCart)
	ErrNotOwner    = apperrors.New(apperrors.ErrCodeForbidden, "无权操作该购物车条目").WithRedirect(RedirectCart)
	ErrCartEmpty   = apperrors.New(apperrors.ErrCodeCartEmpty, "购物车为空").WithRedirect(RedirectCatalog)
)
