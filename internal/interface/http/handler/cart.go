package handler

import (
	"github.com/gin-gonic/gin"

	cartapp "github.com/xiebiao/tintayhojas/internal/application/cart"
	"github.com/xiebiao/tintayhojas/internal/interface/http/dto"
	"github.com/xiebiao/tintayhojas/internal/interface/http/middleware"
	"github.com/xiebiao/tintayhojas/pkg/response"
)

// CartHandler 购物车（需要登录）
type CartHandler struct {
	view   *cartapp.ViewCartUseCase
	add    *cartapp.AddToCartUseCase
	change *cartapp.ChangeItemUseCase
}

func NewCartHandler(
	view *cartapp.ViewCartUseCase,
	add *cartapp.AddToCartUseCase,
	change *cartapp.ChangeItemUseCase,
) *CartHandler {
	return &CartHandler{view: view, add: add, change: change}
}

// View 查看购物车
// @Summary      查看购物车
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=view.CartView}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/cart [get]
func (h *CartHandler) View(c *gin.Context) {
	result, err := h.view.Execute(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Add 加入购物车
// @Summary      加入购物车
// @Description  已在购物车中则数量+1；售罄或达到库存上限时报错
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=cartapp.AddToCartResponse}
// @Failure      400 {object} response.Response "已售罄/已达库存上限"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/cart/books/{id} [post]
func (h *CartHandler) Add(c *gin.Context) {
	bookID, ok := idParam(c, "id")
	if !ok {
		return
	}

	result, err := h.add.Execute(c.Request.Context(), middleware.GetUserID(c), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ChangeItem 修改购物车条目
// @Summary      修改购物车条目
// @Description  action: increment | decrement | remove，数量减到0时删除条目
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                       true "条目ID"
// @Param        request body dto.ChangeCartItemRequest true "操作"
// @Success      200 {object} response.Response{data=cartapp.ChangeItemResponse}
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "条目不存在"
// @Router       /api/v1/cart/items/{id} [patch]
func (h *CartHandler) ChangeItem(c *gin.Context) {
	itemID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req dto.ChangeCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	h.changeItem(c, itemID, cartapp.Action(req.Action))
}

// RemoveItem 删除购物车条目
// @Summary      删除购物车条目
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "条目ID"
// @Success      200 {object} response.Response{data=cartapp.ChangeItemResponse}
// @Failure      404 {object} response.Response "条目不存在"
// @Router       /api/v1/cart/items/{id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	itemID, ok := idParam(c, "id")
	if !ok {
		return
	}
	h.changeItem(c, itemID, cartapp.ActionRemove)
}

func (h *CartHandler) changeItem(c *gin.Context, itemID uint, action cartapp.Action) {
	result, err := h.change.Execute(c.Request.Context(), cartapp.ChangeItemRequest{
		UserID: middleware.GetUserID(c),
		ItemID: itemID,
		Action: action,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
