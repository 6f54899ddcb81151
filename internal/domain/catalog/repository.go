package catalog

import (
	"context"
)

// BookRepository 图书仓储接口
// 删除是归档(软删除),已归档的图书不出现在任何查询结果中,但订单明细仍可引用
type BookRepository interface {
	Create(ctx context.Context, book *Book) error

	// FindByID 查询图书,预加载作者、书系、供应商
	FindByID(ctx context.Context, id uint) (*Book, error)

	Update(ctx context.Context, book *Book) error

	// Archive 归档图书
	Archive(ctx context.Context, id uint) error

	// ArchiveByAuthor 归档作者名下所有图书,返回被归档的图书ID
	ArchiveByAuthor(ctx context.Context, authorID uint) ([]uint, error)

	// ArchiveByCollection 归档书系下所有图书,返回被归档的图书ID
	ArchiveByCollection(ctx context.Context, collectionID uint) ([]uint, error)

	List(ctx context.Context, filter BookFilter) ([]*Book, int64, error)

	// ListRecommended 推荐图书,按ID倒序
	ListRecommended(ctx context.Context, limit int) ([]*Book, error)

	// ListNewest 最新上架的图书
	ListNewest(ctx context.Context, limit int) ([]*Book, error)

	// LockByIDs 悲观锁查询(SELECT ... FOR UPDATE),按ID升序加锁避免死锁
	// 必须在事务中调用;任何一个ID不存在都返回ErrBookNotFound
	LockByIDs(ctx context.Context, ids []uint) ([]*Book, error)

	// UpdateStock 原子更新库存,delta为负表示扣减
	// 扣减后库存小于0时返回ErrInsufficientStock
	UpdateStock(ctx context.Context, id uint, delta int) error
}

// BookFilter 图书列表查询参数
type BookFilter struct {
	Page         int
	PageSize     int
	CollectionID uint
	AuthorID     uint
	Recommended  *bool
	SortBy       string // title / newest(默认)
}

// Normalize 规范化分页参数
func (f *BookFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
	if f.SortBy != "title" {
		f.SortBy = "newest"
	}
}

// AuthorRepository 作者仓储接口
type AuthorRepository interface {
	Create(ctx context.Context, author *Author) error
	FindByID(ctx context.Context, id uint) (*Author, error)
	Update(ctx context.Context, author *Author) error
	Archive(ctx context.Context, id uint) error
	// List 按名称排序
	List(ctx context.Context) ([]*Author, error)
}

// CollectionRepository 书系仓储接口
type CollectionRepository interface {
	Create(ctx context.Context, collection *Collection) error
	FindByID(ctx context.Context, id uint) (*Collection, error)
	Update(ctx context.Context, collection *Collection) error
	Archive(ctx context.Context, id uint) error
	List(ctx context.Context) ([]*Collection, error)
}

// SupplierRepository 供应商仓储接口
type SupplierRepository interface {
	Create(ctx context.Context, supplier *Supplier) error
	FindByID(ctx context.Context, id uint) (*Supplier, error)
	Update(ctx context.Context, supplier *Supplier) error
	// DetachBooks 把引用该供应商的图书（含已归档）supplier_id置空
	DetachBooks(ctx context.Context, supplierID uint) error
	// Delete 物理删除，先在同一事务中调用DetachBooks
	Delete(ctx context.Context, id uint) error
	// List 按公司名排序
	List(ctx context.Context) ([]*Supplier, error)
}
