package dto

// PageQuery 分页参数，默认第1页、每页20条
type PageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}

// BookListQuery 图书列表查询
type BookListQuery struct {
	PageQuery
	CollectionID uint   `form:"collection_id"`
	AuthorID     uint   `form:"author_id"`
	Recommended  *bool  `form:"recommended"`
	Sort         string `form:"sort" binding:"omitempty,oneof=newest title"`
}

// ReviewListQuery 书评列表，可按图书、作者、书系过滤
type ReviewListQuery struct {
	PageQuery
	BookID       uint `form:"book_id"`
	AuthorID     uint `form:"author_id"`
	CollectionID uint `form:"collection_id"`
}

// SubmitReviewRequest 发表书评
type SubmitReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,rating" example:"5"`
	Comment string `json:"comment" binding:"required,max=2000" example:"Una obra maestra"`
}
