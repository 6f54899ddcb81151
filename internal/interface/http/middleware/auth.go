package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/tintayhojas/internal/application/port"
	"github.com/xiebiao/tintayhojas/internal/domain/user"
	apperrors "github.com/xiebiao/tintayhojas/pkg/errors"
	"github.com/xiebiao/tintayhojas/pkg/jwt"
	"github.com/xiebiao/tintayhojas/pkg/response"
)

const (
	ctxUserID      = "user_id"
	ctxUsername    = "username"
	ctxAccessToken = "access_token"
)

// loginRedirect 未登录时建议跳转的页面
const loginRedirect = "/login"

// AuthMiddleware JWT认证中间件
//  1. 从Header提取Bearer Token
//  2. 检查Token黑名单（已登出）
//  3. 验证Token，拒绝Refresh Token
//  4. 将用户信息注入Context
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	sessions   port.SessionStore
	users      user.Repository
}

func NewAuthMiddleware(jwtManager *jwt.Manager, sessions port.SessionStore, users user.Repository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		sessions:   sessions,
		users:      users,
	}
}

// RequireAuth 要求登录
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abort(c, apperrors.ErrUnauthorized.WithRedirect(loginRedirect))
			return
		}

		claims, err := m.authenticate(c, token)
		if err != nil {
			abort(c, err)
			return
		}

		setIdentity(c, claims, token)
		c.Next()
	}
}

// OptionalAuth 可选登录：Token有效时注入用户信息，无效或缺失时按匿名用户处理
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := m.authenticate(c, token); err == nil {
				setIdentity(c, claims, token)
			}
		}
		c.Next()
	}
}

// RequireStaff 要求管理员，必须放在RequireAuth之后
// 权限以数据库中的is_staff为准，不信任Token里的声明
func (m *AuthMiddleware) RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := m.users.FindByID(c.Request.Context(), GetUserID(c))
		if err != nil {
			if apperrors.HasCode(err, apperrors.ErrCodeUserNotFound) {
				abort(c, apperrors.ErrUnauthorized.WithRedirect(loginRedirect))
				return
			}
			abort(c, err)
			return
		}
		if !u.CanAccessAdmin() {
			abort(c, apperrors.ErrStaffRequired.WithRedirect("/"))
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context, token string) (*jwt.Claims, error) {
	blacklisted, err := m.sessions.IsInBlacklist(c.Request.Context(), token)
	if err != nil {
		return nil, apperrors.Wrap(err, "验证Token失败")
	}
	if blacklisted {
		return nil, apperrors.ErrInvalidToken.WithMessage("Token已失效，请重新登录").WithRedirect(loginRedirect)
	}

	claims, err := m.jwtManager.ParseToken(token)
	if err != nil {
		return nil, err
	}
	if claims.Refresh {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// bearerToken 格式：Authorization: Bearer <token>
func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setIdentity(c *gin.Context, claims *jwt.Claims, token string) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxUsername, claims.Username)
	c.Set(ctxAccessToken, token)
}

func abort(c *gin.Context, err error) {
	response.Error(c, err)
	c.Abort()
}

// GetUserID 当前登录用户ID，匿名用户返回0
func GetUserID(c *gin.Context) uint {
	if v, ok := c.Get(ctxUserID); ok {
		if uid, ok := v.(uint); ok {
			return uid
		}
	}
	return 0
}

// GetUsername 当前登录用户名，匿名请求为空
func GetUsername(c *gin.Context) string {
	return c.GetString(ctxUsername)
}

// GetAccessToken 当前请求使用的Access Token（登出时加入黑名单）
func GetAccessToken(c *gin.Context) string {
	return c.GetString(ctxAccessToken)
}
