package review

import (
	apperrors "github.com/xiebiao/tintayhojas/pkg/errors"
)

// 书评领域错误定义
var (
	ErrReviewNotFound = apperrors.New(apperrors.ErrCodeReviewNotFound, "评价不存在")
	ErrNotAllowed     = apperrors.New(apperrors.ErrCodeReviewNotAllowed, "购买过该图书后才能评价")
	ErrDuplicate      = apperrors.New(apperrors.ErrCodeReviewDuplicate, "你已经评价过这本书了")
	ErrInvalidRating  = apperrors.New(apperrors.ErrCodeInvalidParams, "评分必须在1到5之间")
	ErrEmptyComment   = apperrors.New(apperrors.ErrCodeInvalidParams, "评论内容不能为空")
)
