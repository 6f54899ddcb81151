package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/tintayhojas/internal/domain/catalog"
	apperrors "github.com/xiebiao/tintayhojas/pkg/errors"
)

// bookRepository 图书仓储的MySQL实现
type bookRepository struct {
	baseRepo
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) catalog.BookRepository {
	return &bookRepository{baseRepo{db: db}}
}

func (r *bookRepository) Create(ctx context.Context, book *catalog.Book) error {
	model := toBookModel(book)
	if err := r.getDB(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建图书失败")
	}
	book.ID = model.ID
	book.CreatedAt = model.CreatedAt
	book.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id uint) (*catalog.Book, error) {
	var model BookModel
	err := r.preload(r.getDB(ctx)).First(&model, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, catalog.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// Update 更新图书基本信息（库存之外的变更也走这里）
func (r *bookRepository) Update(ctx context.Context, book *catalog.Book) error {
	result := r.getDB(ctx).Model(&BookModel{ID: book.ID}).Updates(map[string]interface{}{
		"title":         book.Title,
		"author_id":     book.AuthorID,
		"collection_id": book.CollectionID,
		"supplier_id":   book.SupplierID,
		"price":         book.Price,
		"stock":         book.Stock,
		"description":   book.Description,
		"image":         book.Image,
		"recommended":   book.Recommended,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新图书失败")
	}
	if result.RowsAffected == 0 {
		return r.ensureExists(ctx, book.ID)
	}
	return nil
}

func (r *bookRepository) Archive(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&BookModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "归档图书失败")
	}
	if result.RowsAffected == 0 {
		return catalog.ErrBookNotFound
	}
	return nil
}

func (r *bookRepository) ArchiveByAuthor(ctx context.Context, authorID uint) ([]uint, error) {
	return r.archiveWhere(ctx, "author_id = ?", authorID)
}

func (r *bookRepository) ArchiveByCollection(ctx context.Context, collectionID uint) ([]uint, error) {
	return r.archiveWhere(ctx, "collection_id = ?", collectionID)
}

func (r *bookRepository) archiveWhere(ctx context.Context, query string, arg interface{}) ([]uint, error) {
	db := r.getDB(ctx)

	var ids []uint
	if err := db.Model(&BookModel{}).Where(query, arg).Pluck("id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询待归档图书失败")
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if err := db.Where("id IN ?", ids).Delete(&BookModel{}).Error; err != nil {
		return nil, apperrors.Wrap(err, "归档图书失败")
	}
	return ids, nil
}

func (r *bookRepository) List(ctx context.Context, filter catalog.BookFilter) ([]*catalog.Book, int64, error) {
	filter.Normalize()

	query := r.getDB(ctx).Model(&BookModel{})
	if filter.CollectionID > 0 {
		query = query.Where("collection_id = ?", filter.CollectionID)
	}
	if filter.AuthorID > 0 {
		query = query.Where("author_id = ?", filter.AuthorID)
	}
	if filter.Recommended != nil {
		query = query.Where("recommended = ?", *filter.Recommended)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "统计图书数量失败")
	}
	if total == 0 {
		return []*catalog.Book{}, 0, nil
	}

	if filter.SortBy == "title" {
		query = query.Order("title ASC").Order("id ASC")
	} else {
		query = query.Order("created_at DESC").Order("id DESC")
	}

	var models []BookModel
	err := r.preload(query).
		Offset(offset(filter.Page, filter.PageSize)).
		Limit(filter.PageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}
	return toBookEntities(models), total, nil
}

func (r *bookRepository) ListRecommended(ctx context.Context, limit int) ([]*catalog.Book, error) {
	var models []BookModel
	err := r.preload(r.getDB(ctx)).
		Where("recommended = ?", true).
		Order("id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询推荐图书失败")
	}
	return toBookEntities(models), nil
}

func (r *bookRepository) ListNewest(ctx context.Context, limit int) ([]*catalog.Book, error) {
	var models []BookModel
	err := r.preload(r.getDB(ctx)).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询最新图书失败")
	}
	return toBookEntities(models), nil
}

// LockByIDs SELECT ... WHERE id IN (...) ORDER BY id FOR UPDATE
// InnoDB按主键顺序加行锁，所有结账事务以同样顺序加锁
func (r *bookRepository) LockByIDs(ctx context.Context, ids []uint) ([]*catalog.Book, error) {
	if len(ids) == 0 {
		return []*catalog.Book{}, nil
	}

	unique := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	var models []BookModel
	err := r.getDB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "锁定图书失败")
	}
	if len(models) != len(unique) {
		return nil, catalog.ErrBookNotFound
	}
	return toBookEntities(models), nil
}

// UpdateStock UPDATE books SET stock = stock + ? WHERE id = ? AND stock + ? >= 0
func (r *bookRepository) UpdateStock(ctx context.Context, id uint, delta int) error {
	result := r.getDB(ctx).Model(&BookModel{}).
		Where("id = ?", id).
		Where("stock + ? >= 0", delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新库存失败")
	}
	if result.RowsAffected == 0 {
		if err := r.ensureExists(ctx, id); err != nil {
			return err
		}
		return catalog.ErrInsufficientStock
	}
	return nil
}

// ensureExists 区分"记录不存在"和"条件未命中"
func (r *bookRepository) ensureExists(ctx context.Context, id uint) error {
	var count int64
	if err := r.getDB(ctx).Model(&BookModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperrors.Wrap(err, "查询图书失败")
	}
	if count == 0 {
		return catalog.ErrBookNotFound
	}
	return nil
}

func (r *bookRepository) preload(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Collection").Preload("Supplier")
}

func toBookModel(b *catalog.Book) *BookModel {
	return &BookModel{
		ID:           b.ID,
		Title:        b.Title,
		AuthorID:     b.AuthorID,
		CollectionID: b.CollectionID,
		SupplierID:   b.SupplierID,
		Price:        b.Price,
		Stock:        b.Stock,
		Description:  b.Description,
		Image:        b.Image,
		Recommended:  b.Recommended,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func toBookEntity(m *BookModel) *catalog.Book {
	b := &catalog.Book{
		ID:           m.ID,
		Title:        m.Title,
		AuthorID:     m.AuthorID,
		CollectionID: m.CollectionID,
		SupplierID:   m.SupplierID,
		Price:        m.Price,
		Stock:        m.Stock,
		Description:  m.Description,
		Image:        m.Image,
		Recommended:  m.Recommended,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.Author != nil {
		b.Author = toAuthorEntity(m.Author)
	}
	if m.Collection != nil {
		b.Collection = toCollectionEntity(m.Collection)
	}
	if m.Supplier != nil {
		b.Supplier = toSupplierEntity(m.Supplier)
	}
	return b
}

func toBookEntities(models []BookModel) []*catalog.Book {
	books := make([]*catalog.Book, 0, len(models))
	for i := range models {
		books = append(books, toBookEntity(&models[i]))
	}
	return books
}
