package dto

// BookForm 后台新建/编辑图书，支持JSON和multipart（image字段上传封面）
type BookForm struct {
	Title        string `json:"title" form:"title" binding:"required,max=200" example:"Pedro Páramo"`
	AuthorID     uint   `json:"author_id" form:"author_id" binding:"required" example:"1"`
	CollectionID uint   `json:"collection_id" form:"collection_id" binding:"required" example:"1"`
	SupplierID   *uint  `json:"supplier_id" form:"supplier_id"`
	Price        string `json:"price" form:"price" binding:"required,money" example:"189.90"`
	Stock        *int   `json:"stock" form:"stock" binding:"required,min=0" example:"10"`
	Description  string `json:"description" form:"description"`
	Recommended  bool   `json:"recommended" form:"recommended"`
}

// AuthorForm photo字段上传照片
type AuthorForm struct {
	Name string `json:"name" form:"name" binding:"required,max=100" example:"Juan Rulfo"`
	Bio  string `json:"bio" form:"bio"`
}

// CollectionForm 图标和背景色可以留空
type CollectionForm struct {
	Name            string `json:"name" form:"name" binding:"required,max=100" example:"Narrativa"`
	Description     string `json:"description" form:"description"`
	Icon            string `json:"icon" form:"icon" binding:"max=50" example:"bi-book"`
	BackgroundColor string `json:"background_color" form:"background_color" binding:"omitempty,hexcolor" example:"#f5e6cc"`
}

type SupplierForm struct {
	CompanyName string `json:"company_name" binding:"required,max=200" example:"Distribuidora Sur"`
	ContactName string `json:"contact_name" binding:"required,max=200" example:"Ana López"`
	Phone       string `json:"phone" binding:"max=20"`
	Email       string `json:"email" binding:"omitempty,email"`
}

// OrderForm 后台手工录入/整体编辑订单
type OrderForm struct {
	UserID        uint   `json:"user_id" example:"2"`
	Address       string `json:"address" binding:"required,max=500"`
	PaymentMethod string `json:"payment_method" binding:"max=50"`
	Total         string `json:"total" binding:"required,money" example:"250.00"`
	Status        string `json:"status" binding:"omitempty,orderstatus" example:"pending"`
}

type OrderStatusForm struct {
	Status string `json:"status" binding:"required,orderstatus" example:"shipped"`
}

// CreateUserForm 后台新建用户
type CreateUserForm struct {
	Username string `json:"username" binding:"required,max=150"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=20"`
	IsStaff  bool   `json:"is_staff"`
}

type EditUserForm struct {
	Username string `json:"username" binding:"required,max=150"`
	Email    string `json:"email" binding:"required,email"`
	IsStaff  bool   `json:"is_staff"`
}

// ReviewForm 后台新建书评（编辑时忽略book_id和user_id）
type ReviewForm struct {
	BookID  uint   `json:"book_id"`
	UserID  uint   `json:"user_id"`
	Rating  int    `json:"rating" binding:"required,rating"`
	Comment string `json:"comment" binding:"required,max=2000"`
}
