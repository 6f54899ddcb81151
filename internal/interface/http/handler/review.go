package handler

import (
	"github.com/gin-gonic/gin"

	reviewapp "github.com/xiebiao/tintayhojas/internal/application/review"
	"github.com/xiebiao/tintayhojas/internal/interface/http/dto"
	"github.com/xiebiao/tintayhojas/internal/interface/http/middleware"
	"github.com/xiebiao/tintayhojas/pkg/response"
)

// ReviewHandler 发表书评
type ReviewHandler struct {
	submit *reviewapp.SubmitReviewUseCase
}

func NewReviewHandler(submit *reviewapp.SubmitReviewUseCase) *ReviewHandler {
	return &ReviewHandler{submit: submit}
}

// Submit 发表书评
// @Summary      发表书评
// @Description  只有买过这本书的用户可以评价，每人每本书一次
// @Tags         书评
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                     true "图书ID"
// @Param        request body dto.SubmitReviewRequest true "评分和内容"
// @Success      200 {object} response.Response{data=view.ReviewView}
// @Failure      400 {object} response.Response "未购买/已评价"
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/books/{id}/reviews [post]
func (h *ReviewHandler) Submit(c *gin.Context) {
	bookID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req dto.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.submit.Execute(c.Request.Context(), reviewapp.SubmitReviewRequest{
		UserID:  middleware.GetUserID(c),
		BookID:  bookID,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
