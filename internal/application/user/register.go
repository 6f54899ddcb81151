package user

import (
	"context"

	"github.com/MonkyMars/gecho"

	"github.com/xiebiao/tintayhojas/internal/application/port"
	"github.com/xiebiao/tintayhojas/internal/application/view"
	"github.com/xiebiao/tintayhojas/internal/domain/cart"
	"github.com/xiebiao/tintayhojas/internal/domain/user"
	"github.com/xiebiao/tintayhojas/pkg/tracing"
)

// RegisterUseCase 创建账号
// 用户、购物车、资料在同一个事务中创建；前台注册、后台新建用户、createsuperuser命令共用
type RegisterUseCase struct {
	txManager   port.TxManager
	userService user.Service
	users       user.Repository
	profiles    user.ProfileRepository
	carts       cart.Repository
	logger      *gecho.Logger
}

func NewRegisterUseCase(
	txManager port.TxManager,
	userService user.Service,
	users user.Repository,
	profiles user.ProfileRepository,
	carts cart.Repository,
	logger *gecho.Logger,
) *RegisterUseCase {
	return &RegisterUseCase{
		txManager:   txManager,
		userService: userService,
		users:       users,
		profiles:    profiles,
		carts:       carts,
		logger:      logger,
	}
}

// RegisterRequest IsStaff/IsSuperuser只有后台和命令行会设置
type RegisterRequest struct {
	Username    string
	Email       string
	Password    string
	IsStaff     bool
	IsSuperuser bool
}

func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (_ *view.UserView, err error) {
	ctx, span := tracing.StartSpan(ctx, "user", "user.register")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	u, err := uc.userService.NewAccount(req.Username, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	u.IsStaff = req.IsStaff || req.IsSuperuser
	u.IsSuperuser = req.IsSuperuser

	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if err := uc.users.Create(txCtx, u); err != nil {
			return err
		}
		if err := uc.carts.Create(txCtx, cart.NewCart(u.ID)); err != nil {
			return err
		}
		return uc.profiles.Create(txCtx, user.NewProfile(u.ID))
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("新用户注册",
		gecho.Field("user_id", u.ID),
		gecho.Field("username", u.Username),
		gecho.Field("is_staff", u.IsStaff),
	)
	v := view.NewUser(u)
	return &v, nil
}
