package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/tintayhojas/internal/application/admin"
	"github.com/xiebiao/tintayhojas/internal/domain/review"
	"github.com/xiebiao/tintayhojas/internal/interface/http/dto"
	"github.com/xiebiao/tintayhojas/pkg/response"
)

// AdminHandler 后台管理（需要staff权限）
type AdminHandler struct {
	dashboard   *admin.DashboardUseCase
	books       *admin.BookUseCase
	authors     *admin.AuthorUseCase
	collections *admin.CollectionUseCase
	suppliers   *admin.SupplierUseCase
	orders      *admin.OrderUseCase
	users       *admin.UserUseCase
	reviews     *admin.ReviewUseCase
}

func NewAdminHandler(
	dashboard *admin.DashboardUseCase,
	books *admin.BookUseCase,
	authors *admin.AuthorUseCase,
	collections *admin.CollectionUseCase,
	suppliers *admin.SupplierUseCase,
	orders *admin.OrderUseCase,
	users *admin.UserUseCase,
	reviews *admin.ReviewUseCase,
) *AdminHandler {
	return &AdminHandler{
		dashboard:   dashboard,
		books:       books,
		authors:     authors,
		collections: collections,
		suppliers:   suppliers,
		orders:      orders,
		users:       users,
		reviews:     reviews,
	}
}

// Dashboard 后台首页
// @Summary      后台首页
// @Description  订单、用户、图书、书评各取第一页，作者、书系、供应商全量
// @Tags         后台
// @Produce      json
// @Security     BearerAuth
// @Param        book_id       query int false "书评按图书过滤"
// @Param        author_id     query int false "书评按作者过滤"
// @Param        collection_id query int false "书评按书系过滤"
// @Success      200 {object} response.Response{data=admin.Dashboard}
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "需要管理员权限"
// @Router       /api/v1/admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	var q dto.ReviewListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.dashboard.Execute(c.Request.Context(), review.Filter{
		BookID:       q.BookID,
		AuthorID:     q.AuthorID,
		CollectionID: q.CollectionID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// deleted 删除类接口统一返回被删除的ID
func deleted(c *gin.Context, id uint, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}
