package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/xiebiao/tintayhojas/internal/application/admin"
	userapp "github.com/xiebiao/tintayhojas/internal/application/user"
	"github.com/xiebiao/tintayhojas/internal/domain/review"
	"github.com/xiebiao/tintayhojas/internal/interface/http/dto"
	"github.com/xiebiao/tintayhojas/pkg/response"
)

// ListOrders 后台订单列表
// @Summary      后台订单列表
// @Tags         后台-订单
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/admin/orders [get]
func (h *AdminHandler) ListOrders(c *gin.Context) {
	q, ok := pageQuery(c)
	if !ok {
		return
	}

	page, err := h.orders.List(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, page.List, page.Total, page.Page, page.PageSize)
}

// GetOrder 后台订单详情
// @Summary      后台订单详情
// @Tags         后台-订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=view.OrderView}
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/admin/orders/{id} [get]
func (h *AdminHandler) GetOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	result, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateOrder 手工录入订单
// @Summary      手工录入订单
// @Description  不含明细、不扣库存，IVA记为0
// @Tags         后台-订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.OrderForm true "订单信息"
// @Success      200 {object} response.Response{data=view.OrderView}
// @Router       /api/v1/admin/orders [post]
func (h *AdminHandler) CreateOrder(c *gin.Context) {
	var form dto.OrderForm
	if err := c.ShouldBindJSON(&form); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.orders.Create(c.Request.Context(), orderInput(form))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateOrder 编辑订单
// @Summary      编辑订单
// @Tags         后台-订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int           true "订单ID"
// @Param        request body dto.OrderForm true "订单信息"
// @Success      200 {object} response.Response{data=view.OrderView}
// @Router       /api/v1/admin/orders/{id} [put]
func (h *AdminHandler) UpdateOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var form dto.OrderForm
	if err := c.ShouldBindJSON(&form); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.orders.Edit(c.Request.Context(), id, orderInput(form))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ChangeOrderStatus 修改订单状态
// @Summary      修改订单状态
// @Description  状态变化时发布order.status_changed事件
// @Tags         后台-订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                 true "订单ID"
// @Param        request body dto.OrderStatusForm true "新状态"
// @Success      200 {object} response.Response{data=view.OrderView}
// @Router       /api/v1/admin/orders/{id}/status [patch]
func (h *AdminHandler) ChangeOrderStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var form dto.OrderStatusForm
	if err := c.ShouldBindJSON(&form); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.orders.ChangeStatus(c.Request.Context(), id, form.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteOrder 删除订单
// @Summary      删除订单
// @Tags         后台-订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/admin/orders/{id} [delete]
func (h *AdminHandler) DeleteOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	deleted(c, id, h.orders.Delete(c.Request.Context(), id))
}

func orderInput(form dto.OrderForm) admin.OrderInput {
	return admin.OrderInput{
		UserID:        form.UserID,
		Address:       form.Address,
		PaymentMethod: form.PaymentMethod,
		Total:         decimal.RequireFromString(form.Total),
		Status:        form.Status,
	}
}

// ListUsers 后台用户列表（不含超级管理员）
// @Summary      后台用户列表
// @Tags         后台-用户
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	q, ok := pageQuery(c)
	if !ok {
		return
	}

	page, err := h.users.List(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, page.List, page.Total, page.Page, page.PageSize)
}

// GetUser 后台用户详情
// @Summary      后台用户详情
// @Description  账号、资料和订单
// @Tags         后台-用户
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Success      200 {object} response.Response{data=admin.UserDetail}
// @Router       /api/v1/admin/users/{id} [get]
func (h *AdminHandler) GetUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	result, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateUser 新建用户
// @Summary      新建用户
// @Tags         后台-用户
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateUserForm true "用户信息"
// @Success      200 {object} response.Response{data=view.UserView}
// @Router       /api/v1/admin/users [post]
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var form dto.CreateUserForm
	if err := c.ShouldBindJSON(&form); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.users.Create(c.Request.Context(), userapp.RegisterRequest{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
		IsStaff:  form.IsStaff,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateUser 编辑用户
// @Summary      编辑用户
// @Tags         后台-用户
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int              true "用户ID"
// @Param        request body dto.EditUserForm true "用户信息"
// @Success      200 {object} response.Response{data=view.UserView}
// @Router       /api/v1/admin/users/{id} [put]
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var form dto.EditUserForm
	if err := c.ShouldBindJSON(&form); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.users.Update(c.Request.Context(), id, admin.UserInput(form))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteUser 删除用户
// @Summary      删除用户
// @Description  连同资料、购物车、订单、书评一起删除；超级管理员不可删除
// @Tags         后台-用户
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Success      200 {object} response.Response
// @Failure      403 {object} response.Response "超级管理员不可删除"
// @Router       /api/v1/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	deleted(c, id, h.users.Delete(c.Request.Context(), id))
}

// ListReviews 后台书评列表
// @Summary      后台书评列表
// @Tags         后台-书评
// @Produce      json
// @Security     BearerAuth
// @Param        book_id       query int false "图书ID"
// @Param        author_id     query int false "作者ID"
// @Param        collection_id query int false "书系ID"
// @Param        page          query int false "页码"
// @Param        page_size     query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/admin/reviews [get]
func (h *AdminHandler) ListReviews(c *gin.Context) {
	var q dto.ReviewListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	page, err := h.reviews.List(c.Request.Context(), review.Filter{
		BookID:       q.BookID,
		AuthorID:     q.AuthorID,
		CollectionID: q.CollectionID,
		Page:         q.Page,
		PageSize:     q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, page.List, page.Total, page.Page, page.PageSize)
}

// GetReview 后台书评详情
// @Summary      后台书评详情
// @Tags         后台-书评
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "书评ID"
// @Success      200 {object} response.Response{data=view.ReviewView}
// @Router       /api/v1/admin/reviews/{id} [get]
func (h *AdminHandler) GetReview(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	result, err := h.reviews.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateReview 后台新建书评
// @Summary      后台新建书评
// @Description  不检查购买记录，每人每本书仍只能一条
// @Tags         后台-书评
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.ReviewForm true "书评"
// @Success      200 {object} response.Response{data=view.ReviewView}
// @Router       /api/v1/admin/reviews [post]
func (h *AdminHandler) CreateReview(c *gin.Context) {
	var form dto.ReviewForm
	if err := c.ShouldBindJSON(&form); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.reviews.Create(c.Request.Context(), admin.ReviewInput(form))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateReview 编辑书评
// @Summary      编辑书评
// @Tags         后台-书评
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int            true "书评ID"
// @Param        request body dto.ReviewForm true "书评"
// @Success      200 {object} response.Response{data=view.ReviewView}
// @Router       /api/v1/admin/reviews/{id} [put]
func (h *AdminHandler) UpdateReview(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var form dto.ReviewForm
	if err := c.ShouldBindJSON(&form); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.reviews.Update(c.Request.Context(), id, form.Rating, form.Comment)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteReview 删除书评
// @Summary      删除书评
// @Tags         后台-书评
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "书评ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/admin/reviews/{id} [delete]
func (h *AdminHandler) DeleteReview(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	deleted(c, id, h.reviews.Delete(c.Request.Context(), id))
}
