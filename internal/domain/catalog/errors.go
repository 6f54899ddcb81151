package catalog

import (
	apperrors "github.com/xiebiao/tintayhojas/pkg/errors"
)

// 目录领域错误定义
var (
	ErrBookNotFound       = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")
	ErrAuthorNotFound     = apperrors.New(apperrors.ErrCodeAuthorNotFound, "作者不存在")
	ErrCollectionNotFound = apperrors.New(apperrors.ErrCodeCollectionNotFound, "书系不存在")
	ErrSupplierNotFound   = apperrors.New(apperrors.ErrCodeSupplierNotFound, "供应商不存在")

	ErrInvalidTitle       = apperrors.New(apperrors.ErrCodeInvalidParams, "书名不能为空且不超过200个字符")
	ErrInvalidName        = apperrors.New(apperrors.ErrCodeInvalidParams, "名称不能为空且不超过100个字符")
	ErrInvalidStyle       = apperrors.New(apperrors.ErrCodeInvalidParams, "图标或背景色过长")
	ErrInvalidPhone       = apperrors.New(apperrors.ErrCodeInvalidParams, "电话不超过20个字符")
	ErrAuthorRequired     = apperrors.New(apperrors.ErrCodeInvalidParams, "必须指定作者")
	ErrCollectionRequired = apperrors.New(apperrors.ErrCodeInvalidParams, "必须指定书系")
	ErrInvalidPrice       = apperrors.New(apperrors.ErrCodeInvalidParams, "价格必须大于0")
	ErrInvalidStock       = apperrors.New(apperrors.ErrCodeInvalidParams, "库存不能为负数")

	// ErrInsufficientStock 库存不足,通常用WithMessage带上书名
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足")
)
