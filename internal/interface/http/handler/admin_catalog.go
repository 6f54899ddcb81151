package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/xiebiao/tintayhojas/internal/application/admin"
	"github.com/xiebiao/tintayhojas/internal/domain/catalog"
	"github.com/xiebiao/tintayhojas/internal/interface/http/dto"
	"github.com/xiebiao/tintayhojas/pkg/response"
)

// ListBooks 后台图书列表
// @Summary      后台图书列表
// @Tags         后台-图书
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/admin/books [get]
func (h *AdminHandler) ListBooks(c *gin.Context) {
	var q dto.BookListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	page, err := h.books.List(c.Request.Context(), catalog.BookFilter{
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

// GetBook 后台图书详情
// @Summary      后台图书详情
// @Tags         后台-图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=view.BookDetail}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/admin/books/{id} [get]
func (h *AdminHandler) GetBook(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	result, err := h.books.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateBook 新建图书
// @Summary      新建图书
// @Description  JSON或multipart表单，multipart时image为封面文件
// @Tags         后台-图书
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.BookForm true "图书信息"
// @Success      200 {object} response.Response{data=view.BookDetail}
// @Failure      404 {object} response.Response "作者/书系/供应商不存在"
// @Router       /api/v1/admin/books [post]
func (h *AdminHandler) CreateBook(c *gin.Context) {
	in, image, ok := h.bookInput(c)
	if !ok {
		return
	}
	defer closeUpload(image)

	result, err := h.books.Create(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateBook 编辑图书
// @Summary      编辑图书
// @Description  上传新封面时替换旧封面
// @Tags         后台-图书
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int          true "图书ID"
// @Param        request body dto.BookForm true "图书信息"
// @Success      200 {object} response.Response{data=view.BookDetail}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/admin/books/{id} [put]
func (h *AdminHandler) UpdateBook(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	in, image, ok := h.bookInput(c)
	if !ok {
		return
	}
	defer closeUpload(image)

	result, err := h.books.Update(c.Request.Context(), id, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Description  图书下架归档，同时从所有购物车移除
// @Tags         后台-图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/admin/books/{id} [delete]
func (h *AdminHandler) DeleteBook(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	deleted(c, id, h.books.Delete(c.Request.Context(), id))
}

// bookInput 绑定图书表单并读取可选封面，失败时已写入响应
func (h *AdminHandler) bookInput(c *gin.Context) (admin.BookInput, io.ReadCloser, bool) {
	var form dto.BookForm
	if err := c.ShouldBind(&form); err != nil {
		bindFailed(c, err)
		return admin.BookInput{}, nil, false
	}

	image, err := upload(c, "image")
	if err != nil {
		response.Error(c, err)
		return admin.BookInput{}, nil, false
	}

	in := admin.BookInput{
		Title:        form.Title,
		AuthorID:     form.AuthorID,
		CollectionID: form.CollectionID,
		SupplierID:   form.SupplierID,
		Price:        decimal.RequireFromString(form.Price), // money校验已通过
		Stock:        *form.Stock,
		Description:  form.Description,
		Recommended:  form.Recommended,
		Image:        reader(image),
	}
	return in, image, true
}

// ListAuthors 后台作者列表
// @Summary      后台作者列表
// @Tags         后台-作者
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]view.AuthorView}
// @Router       /api/v1/admin/authors [get]
func (h *AdminHandler) ListAuthors(c *gin.Context) {
	result, err := h.authors.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetAuthor 后台作者详情
// @Summary      后台作者详情
// @Tags         后台-作者
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "作者ID"
// @Success      200 {object} response.Response{data=view.AuthorView}
// @Router       /api/v1/admin/authors/{id} [get]
func (h *AdminHandler) GetAuthor(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	result, err := h.authors.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateAuthor 新建作者
// @Summary      新建作者
// @Tags         后台-作者
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AuthorForm true "作者信息"
// @Success      200 {object} response.Response{data=view.AuthorView}
// @Router       /api/v1/admin/authors [post]
func (h *AdminHandler) CreateAuthor(c *gin.Context) {
	var form dto.AuthorForm
	if err := c.ShouldBind(&form); err != nil {
		bindFailed(c, err)
		return
	}
	photo, err := upload(c, "photo")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeUpload(photo)

	result, err := h.authors.Create(c.Request.Context(), admin.AuthorInput{
		Name:  form.Name,
		Bio:   form.Bio,
		Photo: reader(photo),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateAuthor 编辑作者
// @Summary      编辑作者
// @Tags         后台-作者
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int            true "作者ID"
// @Param        request body dto.AuthorForm true "作者信息"
// @Success      200 {object} response.Response{data=view.AuthorView}
// @Router       /api/v1/admin/authors/{id} [put]
func (h *AdminHandler) UpdateAuthor(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var form dto.AuthorForm
	if err := c.ShouldBind(&form); err != nil {
		bindFailed(c, err)
		return
	}
	photo, err := upload(c, "photo")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeUpload(photo)

	result, err := h.authors.Update(c.Request.Context(), id, admin.AuthorInput{
		Name:  form.Name,
		Bio:   form.Bio,
		Photo: reader(photo),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteAuthor 删除作者
// @Summary      删除作者
// @Description  作者及其全部图书归档
// @Tags         后台-作者
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "作者ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/admin/authors/{id} [delete]
func (h *AdminHandler) DeleteAuthor(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	deleted(c, id, h.authors.Delete(c.Request.Context(), id))
}

// ListCollections 后台书系列表
// @Summary      后台书系列表
// @Tags         后台-书系
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]view.CollectionView}
// @Router       /api/v1/admin/collections [get]
func (h *AdminHandler) ListCollections(c *gin.Context) {
	result, err := h.collections.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetCollection 后台书系详情
// @Summary      后台书系详情
// @Tags         后台-书系
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "书系ID"
// @Success      200 {object} response.Response{data=view.CollectionView}
// @Router       /api/v1/admin/collections/{id} [get]
func (h *AdminHandler) GetCollection(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	result, err := h.collections.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateCollection 新建书系
// @Summary      新建书系
// @Tags         后台-书系
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CollectionForm true "书系信息"
// @Success      200 {object} response.Response{data=view.CollectionView}
// @Router       /api/v1/admin/collections [post]
func (h *AdminHandler) CreateCollection(c *gin.Context) {
	var form dto.CollectionForm
	if err := c.ShouldBind(&form); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.collections.Create(c.Request.Context(), collectionInput(form))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateCollection 编辑书系
// @Summary      编辑书系
// @Tags         后台-书系
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                true "书系ID"
// @Param        request body dto.CollectionForm true "书系信息"
// @Success      200 {object} response.Response{data=view.CollectionView}
// @Router       /api/v1/admin/collections/{id} [put]
func (h *AdminHandler) UpdateCollection(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var form dto.CollectionForm
	if err := c.ShouldBind(&form); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.collections.Update(c.Request.Context(), id, collectionInput(form))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteCollection 删除书系
// @Summary      删除书系
// @Description  书系及其全部图书归档
// @Tags         后台-书系
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "书系ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/admin/collections/{id} [delete]
func (h *AdminHandler) DeleteCollection(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	deleted(c, id, h.collections.Delete(c.Request.Context(), id))
}

func collectionInput(form dto.CollectionForm) admin.CollectionInput {
	return admin.CollectionInput{
		Name:            form.Name,
		Description:     form.Description,
		Icon:            form.Icon,
		BackgroundColor: form.BackgroundColor,
	}
}

// ListSuppliers 供应商列表
// @Summary      供应商列表
// @Tags         后台-供应商
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]view.SupplierView}
// @Router       /api/v1/admin/suppliers [get]
func (h *AdminHandler) ListSuppliers(c *gin.Context) {
	result, err := h.suppliers.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetSupplier 供应商详情
// @Summary      供应商详情
// @Tags         后台-供应商
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "供应商ID"
// @Success      200 {object} response.Response{data=view.SupplierView}
// @Router       /api/v1/admin/suppliers/{id} [get]
func (h *AdminHandler) GetSupplier(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	result, err := h.suppliers.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateSupplier 新建供应商
// @Summary      新建供应商
// @Tags         后台-供应商
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.SupplierForm true "供应商信息"
// @Success      200 {object} response.Response{data=view.SupplierView}
// @Router       /api/v1/admin/suppliers [post]
func (h *AdminHandler) CreateSupplier(c *gin.Context) {
	var form dto.SupplierForm
	if err := c.ShouldBindJSON(&form); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.suppliers.Create(c.Request.Context(), admin.SupplierInput(form))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateSupplier 编辑供应商
// @Summary      编辑供应商
// @Tags         后台-供应商
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int              true "供应商ID"
// @Param        request body dto.SupplierForm true "供应商信息"
// @Success      200 {object} response.Response{data=view.SupplierView}
// @Router       /api/v1/admin/suppliers/{id} [put]
func (h *AdminHandler) UpdateSupplier(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var form dto.SupplierForm
	if err := c.ShouldBindJSON(&form); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.suppliers.Update(c.Request.Context(), id, admin.SupplierInput(form))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteSupplier 删除供应商
// @Summary      删除供应商
// @Description  供应商直接删除，其图书保留但不再关联供应商
// @Tags         后台-供应商
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "供应商ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/admin/suppliers/{id} [delete]
func (h *AdminHandler) DeleteSupplier(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	deleted(c, id, h.suppliers.Delete(c.Request.Context(), id))
}
