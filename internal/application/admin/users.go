package admin

import (
	"context"

	"github.com/xiebiao/tintayhojas/internal/application/port"
	"github.com/xiebiao/tintayhojas/internal/application/view"
	"github.com/xiebiao/tintayhojas/internal/domain/order"
	"github.com/xiebiao/tintayhojas/internal/domain/user"

	userapp "github.com/xiebiao/tintayhojas/internal/application/user"
)

// UserUseCase 用户管理，列表不显示超级管理员
type UserUseCase struct {
	txManager port.TxManager
	users     user.Repository
	profiles  user.ProfileRepository
	orders    order.Repository
	register  *userapp.RegisterUseCase
	images    port.ImageStore
}

func NewUserUseCase(
	txManager port.TxManager,
	users user.Repository,
	profiles user.ProfileRepository,
	orders order.Repository,
	register *userapp.RegisterUseCase,
	images port.ImageStore,
) *UserUseCase {
	return &UserUseCase{
		txManager: txManager,
		users:     users,
		profiles:  profiles,
		orders:    orders,
		register:  register,
		images:    images,
	}
}

// UserDetail 用户、资料和订单
type UserDetail struct {
	User    view.UserView     `json:"user"`
	Profile *view.ProfileView `json:"profile,omitempty"`
	Orders  []view.OrderView  `json:"orders"`
}

// UserInput 编辑账号
type UserInput struct {
	Username string
	Email    string
	IsStaff  bool
}

func (uc *UserUseCase) List(ctx context.Context, page, pageSize int) (*view.Page[view.UserView], error) {
	page, pageSize = view.NormalizePage(page, pageSize)
	users, total, err := uc.users.List(ctx, user.ListParams{Page: page, PageSize: pageSize, ExcludeSuperusers: true})
	if err != nil {
		return nil, err
	}
	list := make([]view.UserView, 0, len(users))
	for _, u := range users {
		list = append(list, view.NewUser(u))
	}
	return &view.Page[view.UserView]{List: list, Total: total, Page: page, PageSize: pageSize}, nil
}

// Create 和前台注册一样，同时创建购物车和资料
func (uc *UserUseCase) Create(ctx context.Context, req userapp.RegisterRequest) (*view.UserView, error) {
	req.IsSuperuser = false
	return uc.register.Execute(ctx, req)
}

func (uc *UserUseCase) Get(ctx context.Context, id uint) (*UserDetail, error) {
	u, err := uc.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &UserDetail{User: view.NewUser(u)}

	if p, err := uc.profiles.FindByUserID(ctx, id); err == nil {
		pv := view.NewProfile(p, uc.images.URL)
		detail.Profile = &pv
	}

	orders, _, err := uc.orders.ListByUserID(ctx, id, 1, 100)
	if err != nil {
		return nil, err
	}
	detail.Orders = view.NewOrders(orders)
	return detail, nil
}

func (uc *UserUseCase) Update(ctx context.Context, id uint, in UserInput) (*view.UserView, error) {
	if err := user.ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := user.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	u, err := uc.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.UpdateAccount(in.Username, in.Email, in.IsStaff || u.IsSuperuser)
	if err := uc.users.Update(ctx, u); err != nil {
		return nil, err
	}
	v := view.NewUser(u)
	return &v, nil
}

// Delete 超级管理员返回ErrSuperuserProtected；其他账号连同购物车、资料、评价、订单一起删除
func (uc *UserUseCase) Delete(ctx context.Context, id uint) error {
	var photo string
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if p, err := uc.profiles.FindByUserID(txCtx, id); err == nil {
			photo = p.Photo
		}
		return uc.users.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}
	discard(ctx, uc.images, photo)
	return nil
}
