package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GORM数据模型
// 领域实体不带GORM tag，Repository负责模型与实体之间的转换

// AuthorModel 作者（软删除）
type AuthorModel struct {
	ID        uint           `gorm:"primaryKey"`
	Name      string         `gorm:"size:100;not null;index;comment:姓名"`
	Bio       string         `gorm:"type:text;comment:简介"`
	Photo     string         `gorm:"size:255;comment:照片路径"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:归档时间"`
}

func (AuthorModel) TableName() string {
	return "authors"
}

// CollectionModel 书系（软删除）
type CollectionModel struct {
	ID              uint           `gorm:"primaryKey"`
	Name            string         `gorm:"size:100;not null;comment:名称"`
	Description     string         `gorm:"type:text;comment:描述"`
	Icon            string         `gorm:"size:10;not null;default:'📚';comment:图标"`
	BackgroundColor string         `gorm:"size:100;not null;default:'#800000';comment:背景色"`
	CreatedAt       time.Time      `gorm:"comment:创建时间"`
	UpdatedAt       time.Time      `gorm:"comment:更新时间"`
	DeletedAt       gorm.DeletedAt `gorm:"index;comment:归档时间"`
}

func (CollectionModel) TableName() string {
	return "collections"
}

// SupplierModel 供应商（物理删除）
type SupplierModel struct {
	ID          uint      `gorm:"primaryKey"`
	CompanyName string    `gorm:"size:100;not null;index;comment:公司名"`
	ContactName string    `gorm:"size:100;not null;comment:联系人"`
	Phone       string    `gorm:"size:20;comment:电话"`
	Email       string    `gorm:"size:254;comment:邮箱"`
	CreatedAt   time.Time `gorm:"comment:创建时间"`
	UpdatedAt   time.Time `gorm:"comment:更新时间"`
}

func (SupplierModel) TableName() string {
	return "suppliers"
}

// BookModel 图书（软删除）
// 价格decimal(10,2)；库存由UpdateStock的条件更新保证不为负
type BookModel struct {
	ID           uint            `gorm:"primaryKey"`
	Title        string          `gorm:"size:200;not null;index;comment:书名"`
	AuthorID     uint            `gorm:"not null;index;comment:作者ID"`
	CollectionID uint            `gorm:"not null;index;comment:书系ID"`
	SupplierID   *uint           `gorm:"index;comment:供应商ID(可空)"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null;comment:价格"`
	Stock        int             `gorm:"not null;default:0;comment:库存"`
	Description  string          `gorm:"type:text;comment:描述"`
	Image        string          `gorm:"size:255;comment:封面路径"`
	Recommended  bool            `gorm:"not null;default:false;index;comment:是否推荐"`
	CreatedAt    time.Time       `gorm:"index;comment:创建时间"`
	UpdatedAt    time.Time       `gorm:"comment:更新时间"`
	DeletedAt    gorm.DeletedAt  `gorm:"index;comment:归档时间"`

	Author     *AuthorModel     `gorm:"foreignKey:AuthorID"`
	Collection *CollectionModel `gorm:"foreignKey:CollectionID"`
	Supplier   *SupplierModel   `gorm:"foreignKey:SupplierID"`
}

func (BookModel) TableName() string {
	return "books"
}

// UserModel 用户（物理删除，级联由userRepository.Delete处理）
type UserModel struct {
	ID          uint      `gorm:"primaryKey"`
	Username    string    `gorm:"uniqueIndex:uk_users_username;size:150;not null;comment:用户名"`
	Email       string    `gorm:"uniqueIndex:uk_users_email;size:254;not null;comment:邮箱"`
	Password    string    `gorm:"size:255;not null;comment:密码(bcrypt)"`
	IsStaff     bool      `gorm:"not null;default:false;comment:是否员工"`
	IsSuperuser bool      `gorm:"not null;default:false;comment:是否超级管理员"`
	DateJoined  time.Time `gorm:"index;comment:注册时间"`
	UpdatedAt   time.Time `gorm:"comment:更新时间"`
}

func (UserModel) TableName() string {
	return "users"
}

// ProfileModel 用户资料，与用户一对一
type ProfileModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex;not null;comment:用户ID"`
	Phone     string    `gorm:"size:20;comment:电话"`
	Address   string    `gorm:"size:255;comment:地址"`
	Photo     string    `gorm:"size:255;comment:头像路径"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (ProfileModel) TableName() string {
	return "profiles"
}

// CartModel 购物车，与用户一对一
type CartModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex;not null;comment:用户ID"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

func (CartModel) TableName() string {
	return "carts"
}

// CartItemModel 购物车条目，(cart_id, book_id)唯一
type CartItemModel struct {
	ID       uint `gorm:"primaryKey"`
	CartID   uint `gorm:"not null;uniqueIndex:uk_cart_book;comment:购物车ID"`
	BookID   uint `gorm:"not null;uniqueIndex:uk_cart_book;index;comment:图书ID"`
	Quantity int  `gorm:"not null;default:1;comment:数量"`
}

func (CartItemModel) TableName() string {
	return "cart_items"
}

// OrderModel 订单
type OrderModel struct {
	ID            uint             `gorm:"primaryKey"`
	OrderNo       string           `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	UserID        uint             `gorm:"index;not null;comment:用户ID"`
	Address       string           `gorm:"size:255;not null;comment:收货地址"`
	PaymentMethod string           `gorm:"size:50;not null;default:'tarjeta';comment:支付方式"`
	Subtotal      decimal.Decimal  `gorm:"type:decimal(10,2);not null;comment:小计"`
	Taxes         decimal.Decimal  `gorm:"type:decimal(10,2);not null;comment:税额"`
	Total         decimal.Decimal  `gorm:"type:decimal(10,2);not null;comment:总额"`
	Status        int              `gorm:"type:tinyint;not null;default:1;index;comment:状态(1待处理2已支付3已发货)"`
	Lines         []OrderLineModel `gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time        `gorm:"index;comment:创建时间"`
	UpdatedAt     time.Time        `gorm:"comment:更新时间"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderLineModel 订单明细，UnitPrice为下单时的价格快照
type OrderLineModel struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"index;not null;comment:订单ID"`
	BookID    uint            `gorm:"index;not null;comment:图书ID"`
	Quantity  int             `gorm:"not null;comment:数量"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null;comment:下单单价"`
}

func (OrderLineModel) TableName() string {
	return "order_lines"
}

// ReviewModel 书评，(user_id, book_id)唯一
type ReviewModel struct {
	ID        uint      `gorm:"primaryKey"`
	BookID    uint      `gorm:"not null;index;uniqueIndex:uk_user_book,priority:2;comment:图书ID"`
	UserID    uint      `gorm:"not null;uniqueIndex:uk_user_book,priority:1;comment:用户ID"`
	Rating    int       `gorm:"type:tinyint;not null;comment:评分1-5"`
	Comment   string    `gorm:"type:text;not null;comment:评论"`
	CreatedAt time.Time `gorm:"index;comment:创建时间"`
}

func (ReviewModel) TableName() string {
	return "reviews"
}

// allModels AutoMigrate的模型列表
func allModels() []interface{} {
	return []interface{}{
		&AuthorModel{},
		&CollectionModel{},
		&SupplierModel{},
		&BookModel{},
		&UserModel{},
		&ProfileModel{},
		&CartModel{},
		&CartItemModel{},
		&OrderModel{},
		&OrderLineModel{},
		&ReviewModel{},
	}
}
