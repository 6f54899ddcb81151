package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	orderapp "github.com/xiebiao/tintayhojas/internal/application/order"
	"github.com/xiebiao/tintayhojas/internal/interface/http/dto"
	"github.com/xiebiao/tintayhojas/internal/interface/http/middleware"
	"github.com/xiebiao/tintayhojas/pkg/response"
)

// OrderHandler 结账、收据、我的订单
type OrderHandler struct {
	preview    *orderapp.PreviewCheckoutUseCase
	checkout   *orderapp.CheckoutUseCase
	receipt    *orderapp.GetReceiptUseCase
	receiptPDF *orderapp.ReceiptPDFUseCase
	myOrders   *orderapp.ListUserOrdersUseCase
}

func NewOrderHandler(
	preview *orderapp.PreviewCheckoutUseCase,
	checkout *orderapp.CheckoutUseCase,
	receipt *orderapp.GetReceiptUseCase,
	receiptPDF *orderapp.ReceiptPDFUseCase,
	myOrders *orderapp.ListUserOrdersUseCase,
) *OrderHandler {
	return &OrderHandler{
		preview:    preview,
		checkout:   checkout,
		receipt:    receipt,
		receiptPDF: receiptPDF,
		myOrders:   myOrders,
	}
}

// Preview 结账预览
// @Summary      结账预览
// @Description  按当前价格计算小计、IVA和总额（不锁库存）
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=orderapp.CheckoutPreview}
// @Failure      400 {object} response.Response "购物车为空"
// @Router       /api/v1/checkout [get]
func (h *OrderHandler) Preview(c *gin.Context) {
	result, err := h.preview.Execute(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Checkout 提交订单
// @Summary      提交订单
// @Description  锁定库存、扣减库存、生成订单并清空购物车，全部在一个事务中完成
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CheckoutRequest true "收货信息"
// @Success      200 {object} response.Response{data=orderapp.CheckoutResponse}
// @Failure      400 {object} response.Response "购物车为空/库存不足"
// @Failure      429 {object} response.Response "请求过于频繁"
// @Router       /api/v1/checkout [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.checkout.Execute(c.Request.Context(), orderapp.CheckoutRequest{
		UserID:        middleware.GetUserID(c),
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Receipt 订单收据
// @Summary      订单收据
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=view.OrderView}
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{id}/receipt [get]
func (h *OrderHandler) Receipt(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	result, err := h.receipt.Execute(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ReceiptPDF 下载PDF收据
// @Summary      下载PDF收据
// @Tags         订单
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {file} binary
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{id}/receipt.pdf [get]
func (h *OrderHandler) ReceiptPDF(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	file, err := h.receiptPDF.Execute(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	c.Data(http.StatusOK, "application/pdf", file.Content)
}

// MyOrders 我的订单
// @Summary      我的订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/profile/orders [get]
func (h *OrderHandler) MyOrders(c *gin.Context) {
	q, ok := pageQuery(c)
	if !ok {
		return
	}

	page, err := h.myOrders.Execute(c.Request.Context(), middleware.GetUserID(c), q.Page, q.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, page.List, page.Total, page.Page, page.PageSize)
}
