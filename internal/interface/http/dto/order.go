package dto

// ChangeCartItemRequest 购物车条目操作
type ChangeCartItemRequest struct {
	Action string `json:"action" binding:"required,oneof=increment decrement remove" example:"increment"`
}

// CheckoutRequest 提交结账，payment_method为空时按tarjeta处理
type CheckoutRequest struct {
	Address       string `json:"address" binding:"required,max=500" example:"Av. Reforma 222, CDMX"`
	PaymentMethod string `json:"payment_method" binding:"max=50" example:"tarjeta"`
}
