package user

import (
	apperrors "github.com/xiebiao/tintayhojas/pkg/errors"
)

// 用户领域错误定义
var (
	ErrUserNotFound    = apperrors.New(apperrors.ErrCodeUserNotFound, "用户不存在")
	ErrProfileNotFound = apperrors.New(apperrors.ErrCodeNotFound, "用户资料不存在")

	ErrUsernameDuplicate = apperrors.New(apperrors.ErrCodeUsernameDuplicate, "用户名已被使用")
	ErrEmailDuplicate    = apperrors.New(apperrors.ErrCodeEmailDuplicate, "邮箱已被注册")

	ErrInvalidUsername = apperrors.New(apperrors.ErrCodeInvalidParams, "用户名为1-150个字符，只能包含字母、数字和@.+-_")
	ErrInvalidEmail    = apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")
	ErrInvalidPhone    = apperrors.New(apperrors.ErrCodeInvalidParams, "电话不超过20个字符")
	ErrWeakPassword    = apperrors.New(apperrors.ErrCodeWeakPassword, "密码强度不足（需8-20位，包含字母和数字）")

	// ErrInvalidCredentials 登录失败,不区分用户名不存在和密码错误
	ErrInvalidCredentials = apperrors.New(apperrors.ErrCodeInvalidCredentials, "用户名或密码错误")

	// ErrSuperuserProtected 超级管理员不可删除
	ErrSuperuserProtected = apperrors.New(apperrors.ErrCodeSuperuserProtected, "超级管理员账号不能删除")
)
