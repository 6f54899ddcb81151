package handler

import (
	"github.com/gin-gonic/gin"

	catalogapp "github.com/xiebiao/tintayhojas/internal/application/catalog"
	reviewapp "github.com/xiebiao/tintayhojas/internal/application/review"
	"github.com/xiebiao/tintayhojas/internal/domain/catalog"
	"github.com/xiebiao/tintayhojas/internal/domain/review"
	"github.com/xiebiao/tintayhojas/internal/interface/http/dto"
	"github.com/xiebiao/tintayhojas/internal/interface/http/middleware"
	"github.com/xiebiao/tintayhojas/pkg/response"
)

// CatalogHandler 公开目录：首页、图书、作者、书系、书评
type CatalogHandler struct {
	home        *catalogapp.HomeUseCase
	listBooks   *catalogapp.ListBooksUseCase
	getBook     *catalogapp.GetBookUseCase
	listAuthors *catalogapp.ListAuthorsUseCase
	getAuthor   *catalogapp.GetAuthorUseCase
	collections *catalogapp.ListCollectionsUseCase
	reviews     *reviewapp.ListReviewsUseCase
}

func NewCatalogHandler(
	home *catalogapp.HomeUseCase,
	listBooks *catalogapp.ListBooksUseCase,
	getBook *catalogapp.GetBookUseCase,
	listAuthors *catalogapp.ListAuthorsUseCase,
	getAuthor *catalogapp.GetAuthorUseCase,
	collections *catalogapp.ListCollectionsUseCase,
	reviews *reviewapp.ListReviewsUseCase,
) *CatalogHandler {
	return &CatalogHandler{
		home:        home,
		listBooks:   listBooks,
		getBook:     getBook,
		listAuthors: listAuthors,
		getAuthor:   getAuthor,
		collections: collections,
		reviews:     reviews,
	}
}

// Home 首页
// @Summary      首页
// @Description  推荐图书和最新上架图书
// @Tags         目录
// @Produce      json
// @Success      200 {object} response.Response{data=catalogapp.HomeView}
// @Router       /api/v1/home [get]
func (h *CatalogHandler) Home(c *gin.Context) {
	result, err := h.home.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  分页浏览，可按书系、作者、是否推荐过滤
// @Tags         目录
// @Produce      json
// @Param        page          query int    false "页码"
// @Param        page_size     query int    false "每页数量"
// @Param        collection_id query int    false "书系ID"
// @Param        author_id     query int    false "作者ID"
// @Param        recommended   query bool   false "只看推荐"
// @Param        sort          query string false "newest | title"
// @Success      200 {object} response.Response{data=response.PageData}
// @Failure      400 {object} response.Response "参数错误"
// @Router       /api/v1/books [get]
func (h *CatalogHandler) ListBooks(c *gin.Context) {
	var q dto.BookListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	page, err := h.listBooks.Execute(c.Request.Context(), catalog.BookFilter{
		Page:         q.Page,
		PageSize:     q.PageSize,
		CollectionID: q.CollectionID,
		AuthorID:     q.AuthorID,
		Recommended:  q.Recommended,
		SortBy:       q.Sort,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, page.List, page.Total, page.Page, page.PageSize)
}

// GetBook 图书详情
// @Summary      图书详情
// @Description  包含书评；登录用户额外返回是否可以评价
// @Tags         目录
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=catalogapp.BookPage}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *CatalogHandler) GetBook(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	// 未登录时viewerID为0
	result, err := h.getBook.Execute(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListAuthors 作者列表
// @Summary      作者列表
// @Tags         目录
// @Produce      json
// @Success      200 {object} response.Response{data=[]view.AuthorView}
// @Router       /api/v1/authors [get]
func (h *CatalogHandler) ListAuthors(c *gin.Context) {
	result, err := h.listAuthors.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetAuthor 作者详情及其作品
// @Summary      作者详情
// @Tags         目录
// @Produce      json
// @Param        id path int true "作者ID"
// @Success      200 {object} response.Response{data=catalogapp.AuthorPage}
// @Failure      404 {object} response.Response "作者不存在"
// @Router       /api/v1/authors/{id} [get]
func (h *CatalogHandler) GetAuthor(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	result, err := h.getAuthor.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListCollections 书系（导航菜单）
// @Summary      书系列表
// @Tags         目录
// @Produce      json
// @Success      200 {object} response.Response{data=[]view.CollectionView}
// @Router       /api/v1/collections [get]
func (h *CatalogHandler) ListCollections(c *gin.Context) {
	result, err := h.collections.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListReviews 书评列表
// @Summary      书评列表
// @Description  可按图书、作者、书系过滤
// @Tags         书评
// @Produce      json
// @Param        book_id       query int false "图书ID"
// @Param        author_id     query int false "作者ID"
// @Param        collection_id query int false "书系ID"
// @Param        page          query int false "页码"
// @Param        page_size     query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/reviews [get]
func (h *CatalogHandler) ListReviews(c *gin.Context) {
	var q dto.ReviewListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	page, err := h.reviews.Execute(c.Request.Context(), review.Filter{
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
