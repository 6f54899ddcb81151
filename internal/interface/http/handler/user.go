package handler

import (
	"github.com/gin-gonic/gin"

	userapp "github.com/xiebiao/tintayhojas/internal/application/user"
	"github.com/xiebiao/tintayhojas/internal/interface/http/dto"
	"github.com/xiebiao/tintayhojas/internal/interface/http/middleware"
	"github.com/xiebiao/tintayhojas/pkg/response"
)

// UserHandler 注册、登录、个人资料
type UserHandler struct {
	register *userapp.RegisterUseCase
	login    *userapp.LoginUseCase
	logout   *userapp.LogoutUseCase
	refresh  *userapp.RefreshTokenUseCase
	profile  *userapp.ProfileUseCase
}

func NewUserHandler(
	register *userapp.RegisterUseCase,
	login *userapp.LoginUseCase,
	logout *userapp.LogoutUseCase,
	refresh *userapp.RefreshTokenUseCase,
	profile *userapp.ProfileUseCase,
) *UserHandler {
	return &UserHandler{
		register: register,
		login:    login,
		logout:   logout,
		refresh:  refresh,
		profile:  profile,
	}
}

// Register 用户注册
// @Summary      用户注册
// @Description  创建账号，同时创建空的个人资料和购物车
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      200 {object} response.Response{data=view.UserView} "注册成功"
// @Failure      400 {object} response.Response "用户名或邮箱已存在/密码强度不足"
// @Router       /api/v1/users/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	// 公开注册永远是普通用户
	result, err := h.register.Execute(c.Request.Context(), userapp.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Login 用户登录
// @Summary      用户登录
// @Description  验证用户名密码，返回JWT Token
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=userapp.LoginResponse} "登录成功"
// @Failure      401 {object} response.Response "用户名或密码错误"
// @Failure      429 {object} response.Response "请求过于频繁"
// @Router       /api/v1/users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.login.Execute(c.Request.Context(), userapp.LoginRequest{
		Username: req.Username,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Logout 退出登录
// @Summary      退出登录
// @Description  当前Access Token加入黑名单
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/v1/users/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	err := h.logout.Execute(c.Request.Context(), middleware.GetUserID(c), middleware.GetAccessToken(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Refresh 刷新Token
// @Summary      刷新Token
// @Description  Refresh Token只能使用一次
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.RefreshTokenRequest true "Refresh Token"
// @Success      200 {object} response.Response{data=jwt.TokenPair}
// @Failure      401 {object} response.Response "Token无效"
// @Router       /api/v1/users/refresh [post]
func (h *UserHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	pair, err := h.refresh.Execute(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pair)
}

// GetProfile 我的资料
// @Summary      我的资料
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=view.ProfileView}
// @Router       /api/v1/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	result, err := h.profile.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateProfile 修改资料
// @Summary      修改资料
// @Description  multipart表单，photo为可选的头像文件
// @Tags         用户
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        phone   formData string false "电话"
// @Param        address formData string false "地址"
// @Param        photo   formData file   false "头像"
// @Success      200 {object} response.Response{data=view.ProfileView}
// @Failure      400 {object} response.Response "图片格式不支持"
// @Router       /api/v1/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFailed(c, err)
		return
	}

	photo, err := upload(c, "photo")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeUpload(photo)

	result, err := h.profile.Update(c.Request.Context(), userapp.UpdateProfileRequest{
		UserID:  middleware.GetUserID(c),
		Phone:   req.Phone,
		Address: req.Address,
		Photo:   reader(photo),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
