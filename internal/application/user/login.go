package user

import (
	"context"
	"time"

	"github.com/MonkyMars/gecho"

	"github.com/xiebiao/tintayhojas/internal/application/port"
	"github.com/xiebiao/tintayhojas/internal/application/view"
	"github.com/xiebiao/tintayhojas/internal/domain/user"
	apperrors "github.com/xiebiao/tintayhojas/pkg/errors"
	"github.com/xiebiao/tintayhojas/pkg/jwt"
)

// LoginUseCase 用户名+密码登录
//  1. 校验密码（用户不存在和密码错误返回同一个错误）
//  2. 生成JWT Token对
//  3. 保存会话到Redis
type LoginUseCase struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore port.SessionStore
	logger       *gecho.Logger
}

func NewLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore port.SessionStore,
	logger *gecho.Logger,
) *LoginUseCase {
	return &LoginUseCase{
		userService:  userService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
		logger:       logger,
	}
}

type LoginRequest struct {
	Username string
	Password string
	ClientIP string
}

type LoginResponse struct {
	User         view.UserView `json:"user"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int64         `json:"expires_in"` // Access Token过期时间（秒）
}

func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := uc.userService.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	pair, err := uc.jwtManager.GenerateToken(identity(u))
	if err != nil {
		return nil, err
	}

	session := map[string]interface{}{
		"user_id":  u.ID,
		"username": u.Username,
		"is_staff": u.IsStaff,
		"login_at": time.Now().Unix(),
		"ip":       req.ClientIP,
	}
	// 会话保存失败不影响登录
	if err := uc.sessionStore.SaveSession(ctx, u.ID, session, uc.jwtManager.RefreshTokenExpire()); err != nil {
		uc.logger.Warn("保存会话失败", gecho.Field("user_id", u.ID), gecho.Field("error", err.Error()))
	}

	return &LoginResponse{
		User:         view.NewUser(u),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

func identity(u *user.User) jwt.Identity {
	return jwt.Identity{UserID: u.ID, Username: u.Username, Email: u.Email, IsStaff: u.IsStaff}
}

// LogoutUseCase 登出：删除会话，Access Token在过期前加入黑名单
type LogoutUseCase struct {
	sessionStore port.SessionStore
	jwtManager   *jwt.Manager
}

func NewLogoutUseCase(sessionStore port.SessionStore, jwtManager *jwt.Manager) *LogoutUseCase {
	return &LogoutUseCase{sessionStore: sessionStore, jwtManager: jwtManager}
}

func (uc *LogoutUseCase) Execute(ctx context.Context, userID uint, accessToken string) error {
	if err := uc.sessionStore.DeleteSession(ctx, userID); err != nil {
		return err
	}
	return uc.sessionStore.AddToBlacklist(ctx, accessToken, uc.jwtManager.AccessTokenExpire())
}

// RefreshTokenUseCase 用Refresh Token换取新的Token对
type RefreshTokenUseCase struct {
	users        user.Repository
	jwtManager   *jwt.Manager
	sessionStore port.SessionStore
}

func NewRefreshTokenUseCase(users user.Repository, jwtManager *jwt.Manager, sessionStore port.SessionStore) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{users: users, jwtManager: jwtManager, sessionStore: sessionStore}
}

// Execute 账号已删除或Refresh Token已被拉黑时返回ErrInvalidToken
func (uc *RefreshTokenUseCase) Execute(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := uc.jwtManager.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	blocked, err := uc.sessionStore.IsInBlacklist(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, apperrors.ErrInvalidToken
	}

	u, err := uc.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	pair, err := uc.jwtManager.GenerateToken(identity(u))
	if err != nil {
		return nil, err
	}
	// 旧的Refresh Token只能用一次
	_ = uc.sessionStore.AddToBlacklist(ctx, refreshToken, uc.jwtManager.RefreshTokenExpire())
	return pair, nil
}
