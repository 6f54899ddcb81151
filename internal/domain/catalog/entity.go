package catalog

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	// DefaultCollectionIcon 书系默认图标
	DefaultCollectionIcon = "📚"
	// DefaultCollectionColor 书系默认背景色
	DefaultCollectionColor = "#800000"

	maxTitleLen   = 200
	maxNameLen    = 100
	maxIconLen    = 10
	maxColorLen   = 100
	maxCompanyLen = 100
	maxPhoneLen   = 20
)

// Author 作者
type Author struct {
	ID        uint
	Name      string
	Bio       string
	Photo     string // 存储路径(可选)
	CreatedAt time.Time
	UpdatedAt time.Time

	Books []*Book // 仅作者详情页加载
}

// Validate 校验作者字段
func (a *Author) Validate() error {
	if !validLength(a.Name, maxNameLen) {
		return ErrInvalidName
	}
	return nil
}

// Collection 书系(分类)
type Collection struct {
	ID              uint
	Name            string
	Description     string
	Icon            string
	BackgroundColor string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ApplyDefaults 未填写的图标和背景色使用默认值
func (c *Collection) ApplyDefaults() {
	if strings.TrimSpace(c.Icon) == "" {
		c.Icon = DefaultCollectionIcon
	}
	if strings.TrimSpace(c.BackgroundColor) == "" {
		c.BackgroundColor = DefaultCollectionColor
	}
}

// Validate 校验书系字段
func (c *Collection) Validate() error {
	if !validLength(c.Name, maxNameLen) {
		return ErrInvalidName
	}
	if utf8.RuneCountInString(c.Icon) > maxIconLen || utf8.RuneCountInString(c.BackgroundColor) > maxColorLen {
		return ErrInvalidStyle
	}
	return nil
}

// Supplier 供应商
type Supplier struct {
	ID          uint
	CompanyName string
	ContactName string
	Phone       string
	Email       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate 校验供应商字段
func (s *Supplier) Validate() error {
	if !validLength(s.CompanyName, maxCompanyLen) || !validLength(s.ContactName, maxCompanyLen) {
		return ErrInvalidName
	}
	if utf8.RuneCountInString(s.Phone) > maxPhoneLen {
		return ErrInvalidPhone
	}
	return nil
}

// Book 图书(聚合根)
// 价格使用decimal(10,2),库存任何时候都不能小于0
type Book struct {
	ID           uint
	Title        string
	AuthorID     uint
	CollectionID uint
	SupplierID   *uint // 供应商删除后置空
	Price        decimal.Decimal
	Stock        int
	Description  string
	Image        string
	Recommended  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Author     *Author
	Collection *Collection
	Supplier   *Supplier
}

// NewBook 创建新图书(工厂方法)
func NewBook(title string, authorID, collectionID uint, price decimal.Decimal, stock int) (*Book, error) {
	now := time.Now()
	b := &Book{
		Title:        strings.TrimSpace(title),
		AuthorID:     authorID,
		CollectionID: collectionID,
		Price:        price,
		Stock:        stock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate 校验图书字段
func (b *Book) Validate() error {
	if !validLength(b.Title, maxTitleLen) {
		return ErrInvalidTitle
	}
	if b.AuthorID == 0 {
		return ErrAuthorRequired
	}
	if b.CollectionID == 0 {
		return ErrCollectionRequired
	}
	if !b.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if b.Stock < 0 {
		return ErrInvalidStock
	}
	return nil
}

// InStock 是否有货
func (b *Book) InStock() bool {
	return b.Stock > 0
}

// CanSupply 库存能否满足quantity
func (b *Book) CanSupply(quantity int) bool {
	return quantity > 0 && quantity <= b.Stock
}

func validLength(s string, max int) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n > 0 && n <= max
}
