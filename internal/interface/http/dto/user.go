package dto

// RegisterRequest 注册请求
// 用户名规则、密码强度由领域服务再校验一次
type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=150" example:"lectora"`
	Email    string `json:"email" binding:"required,email" example:"lectora@example.com"`
	Password string `json:"password" binding:"required,min=8,max=20" example:"secreto123"`
}

// LoginRequest 用户名+密码登录
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"lectora"`
	Password string `json:"password" binding:"required" example:"secreto123"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest 修改资料，photo通过multipart上传
type UpdateProfileRequest struct {
	Phone   string `json:"phone" form:"phone" binding:"max=20" example:"55 1234 5678"`
	Address string `json:"address" form:"address" binding:"max=500" example:"Av. Reforma 222, CDMX"`
}
