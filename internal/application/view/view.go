// Package view 应用层返回给接口层的只读视图
// 金额统一为两位小数字符串，时间统一为 2006-01-02 15:04:05
package view

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/tintayhojas/internal/domain/cart"
	"github.com/xiebiao/tintayhojas/internal/domain/catalog"
	"github.com/xiebiao/tintayhojas/internal/domain/order"
	"github.com/xiebiao/tintayhojas/internal/domain/review"
	"github.com/xiebiao/tintayhojas/internal/domain/user"
)

const timeLayout = "2006-01-02 15:04:05"

// URLFunc 把存储路径转为访问地址
type URLFunc func(stored string) string

// Page 分页结果
type Page[T any] struct {
	List     []T
	Total    int64
	Page     int
	PageSize int
}

// NormalizePage 页码从1开始，每页默认20条，最多100条
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func Time(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

type AuthorView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Bio   string `json:"bio,omitempty"`
	Photo string `json:"photo,omitempty"`
}

func NewAuthor(a *catalog.Author, url URLFunc) AuthorView {
	return AuthorView{ID: a.ID, Name: a.Name, Bio: a.Bio, Photo: url(a.Photo)}
}

type CollectionView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Icon            string `json:"icon"`
	BackgroundColor string `json:"background_color"`
}

func NewCollection(c *catalog.Collection) CollectionView {
	return CollectionView{
		ID:              c.ID,
		Name:            c.Name,
		Description:     c.Description,
		Icon:            c.Icon,
		BackgroundColor: c.BackgroundColor,
	}
}

type SupplierView struct {
	ID          uint   `json:"id"`
	CompanyName string `json:"company_name"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
}

func NewSupplier(s *catalog.Supplier) SupplierView {
	return SupplierView{
		ID:          s.ID,
		CompanyName: s.CompanyName,
		ContactName: s.ContactName,
		Phone:       s.Phone,
		Email:       s.Email,
	}
}

// BookSummary 列表中的图书
type BookSummary struct {
	ID             uint   `json:"id"`
	Title          string `json:"title"`
	AuthorID       uint   `json:"author_id"`
	AuthorName     string `json:"author_name"`
	CollectionID   uint   `json:"collection_id"`
	CollectionName string `json:"collection_name"`
	Price          string `json:"price"`
	Stock          int    `json:"stock"`
	InStock        bool   `json:"in_stock"`
	Image          string `json:"image,omitempty"`
	Recommended    bool   `json:"recommended"`
}

func NewBookSummary(b *catalog.Book, url URLFunc) BookSummary {
	s := BookSummary{
		ID:           b.ID,
		Title:        b.Title,
		AuthorID:     b.AuthorID,
		CollectionID: b.CollectionID,
		Price:        Money(b.Price),
		Stock:        b.Stock,
		InStock:      b.InStock(),
		Image:        url(b.Image),
		Recommended:  b.Recommended,
	}
	if b.Author != nil {
		s.AuthorName = b.Author.Name
	}
	if b.Collection != nil {
		s.CollectionName = b.Collection.Name
	}
	return s
}

func NewBookSummaries(books []*catalog.Book, url URLFunc) []BookSummary {
	list := make([]BookSummary, 0, len(books))
	for _, b := range books {
		list = append(list, NewBookSummary(b, url))
	}
	return list
}

// BookDetail 图书详情
type BookDetail struct {
	BookSummary
	Description  string          `json:"description"`
	Author       *AuthorView     `json:"author,omitempty"`
	Collection   *CollectionView `json:"collection,omitempty"`
	SupplierID   *uint           `json:"supplier_id,omitempty"`
	SupplierName string          `json:"supplier_name,omitempty"`
	CreatedAt    string          `json:"created_at"`
}

func NewBookDetail(b *catalog.Book, url URLFunc) BookDetail {
	d := BookDetail{
		BookSummary: NewBookSummary(b, url),
		Description: b.Description,
		SupplierID:  b.SupplierID,
		CreatedAt:   Time(b.CreatedAt),
	}
	if b.Author != nil {
		a := NewAuthor(b.Author, url)
		d.Author = &a
	}
	if b.Collection != nil {
		c := NewCollection(b.Collection)
		d.Collection = &c
	}
	if b.Supplier != nil {
		d.SupplierName = b.Supplier.CompanyName
	}
	return d
}

type ReviewView struct {
	ID        uint   `json:"id"`
	BookID    uint   `json:"book_id"`
	BookTitle string `json:"book_title,omitempty"`
	UserID    uint   `json:"user_id"`
	Username  string `json:"username,omitempty"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
}

func NewReview(r *review.Review) ReviewView {
	return ReviewView{
		ID:        r.ID,
		BookID:    r.BookID,
		BookTitle: r.BookTitle,
		UserID:    r.UserID,
		Username:  r.Username,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: Time(r.CreatedAt),
	}
}

func NewReviews(reviews []*review.Review) []ReviewView {
	list := make([]ReviewView, 0, len(reviews))
	for _, r := range reviews {
		list = append(list, NewReview(r))
	}
	return list
}

type UserView struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
	DateJoined  string `json:"date_joined"`
}

func NewUser(u *user.User) UserView {
	return UserView{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		DateJoined:  Time(u.DateJoined),
	}
}

type ProfileView struct {
	UserID  uint   `json:"user_id"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Photo   string `json:"photo,omitempty"`
}

func NewProfile(p *user.Profile, url URLFunc) ProfileView {
	return ProfileView{UserID: p.UserID, Phone: p.Phone, Address: p.Address, Photo: url(p.Photo)}
}

type CartItemView struct {
	ID        uint   `json:"id"`
	BookID    uint   `json:"book_id"`
	BookTitle string `json:"book_title"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Stock     int    `json:"stock"`
	Subtotal  string `json:"subtotal"`
}

type CartView struct {
	ID    uint           `json:"id"`
	Items []CartItemView `json:"items"`
	Count int            `json:"count"` // 图书总册数
	Total string         `json:"total"`
}

func NewCartItem(i *cart.Item) CartItemView {
	return CartItemView{
		ID:        i.ID,
		BookID:    i.BookID,
		BookTitle: i.BookTitle,
		UnitPrice: Money(i.UnitPrice),
		Quantity:  i.Quantity,
		Stock:     i.Stock,
		Subtotal:  Money(i.Subtotal()),
	}
}

func NewCart(c *cart.Cart) CartView {
	v := CartView{ID: c.ID, Items: make([]CartItemView, 0, len(c.Items)), Total: Money(c.Total())}
	for _, item := range c.Items {
		v.Items = append(v.Items, NewCartItem(item))
		v.Count += item.Quantity
	}
	return v
}

type OrderLineView struct {
	ID        uint   `json:"id"`
	BookID    uint   `json:"book_id"`
	BookTitle string `json:"book_title"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

type OrderView struct {
	ID            uint            `json:"id"`
	OrderNo       string          `json:"order_no"`
	UserID        uint            `json:"user_id"`
	Username      string          `json:"username,omitempty"`
	Address       string          `json:"address"`
	PaymentMethod string          `json:"payment_method"`
	Subtotal      string          `json:"subtotal"`
	Taxes         string          `json:"taxes"`
	Total         string          `json:"total"`
	Status        string          `json:"status"`
	Lines         []OrderLineView `json:"lines"`
	CreatedAt     string          `json:"created_at"`
}

func NewOrder(o *order.Order) OrderView {
	v := OrderView{
		ID:            o.ID,
		OrderNo:       o.OrderNo,
		UserID:        o.UserID,
		Username:      o.Username,
		Address:       o.Address,
		PaymentMethod: o.PaymentMethod,
		Subtotal:      Money(o.Subtotal),
		Taxes:         Money(o.Taxes),
		Total:         Money(o.Total),
		Status:        o.Status.String(),
		Lines:         make([]OrderLineView, 0, len(o.Lines)),
		CreatedAt:     Time(o.CreatedAt),
	}
	for _, l := range o.Lines {
		v.Lines = append(v.Lines, OrderLineView{
			ID:        l.ID,
			BookID:    l.BookID,
			BookTitle: l.BookTitle,
			Quantity:  l.Quantity,
			UnitPrice: Money(l.UnitPrice),
			Subtotal:  Money(l.Subtotal()),
		})
	}
	return v
}

func NewOrders(orders []*order.Order) []OrderView {
	list := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		list = append(list, NewOrder(o))
	}
	return list
}
