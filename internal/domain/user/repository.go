package user

import (
	"context"
)

// Repository 用户仓储接口
type Repository interface {
	// Create 创建用户，用户名或邮箱重复时返回ErrUsernameDuplicate/ErrEmailDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 不存在时返回ErrUserNotFound
	FindByID(ctx context.Context, id uint) (*User, error)

	FindByUsername(ctx context.Context, username string) (*User, error)

	FindByEmail(ctx context.Context, email string) (*User, error)

	Update(ctx context.Context, user *User) error

	// Delete 物理删除用户及其购物车、资料、评价、订单
	// 必须在事务中调用
	Delete(ctx context.Context, id uint) error

	// List 按注册时间倒序
	List(ctx context.Context, params ListParams) ([]*User, int64, error)
}

// ListParams 用户列表查询参数
type ListParams struct {
	Page              int
	PageSize          int
	ExcludeSuperusers bool
}

// ProfileRepository 用户资料仓储接口
type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error

	// FindByUserID 不存在时返回ErrProfileNotFound
	FindByUserID(ctx context.Context, userID uint) (*Profile, error)

	Update(ctx context.Context, profile *Profile) error
}
