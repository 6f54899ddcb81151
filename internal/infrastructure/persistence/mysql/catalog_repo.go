package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/tintayhojas/internal/domain/catalog"
	apperrors "github.com/xiebiao/tintayhojas/pkg/errors"
)

// authorRepository 作者仓储
type authorRepository struct {
	baseRepo
}

func NewAuthorRepository(db *gorm.DB) catalog.AuthorRepository {
	return &authorRepository{baseRepo{db: db}}
}

func (r *authorRepository) Create(ctx context.Context, author *catalog.Author) error {
	model := &AuthorModel{Name: author.Name, Bio: author.Bio, Photo: author.Photo}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建作者失败")
	}
	author.ID = model.ID
	author.CreatedAt = model.CreatedAt
	author.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *authorRepository) FindByID(ctx context.Context, id uint) (*catalog.Author, error) {
	var model AuthorModel
	if err := r.getDB(ctx).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, catalog.ErrAuthorNotFound
		}
		return nil, apperrors.Wrap(err, "查询作者失败")
	}
	return toAuthorEntity(&model), nil
}

func (r *authorRepository) Update(ctx context.Context, author *catalog.Author) error {
	result := r.getDB(ctx).Model(&AuthorModel{ID: author.ID}).Updates(map[string]interface{}{
		"name":  author.Name,
		"bio":   author.Bio,
		"photo": author.Photo,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新作者失败")
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, author.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *authorRepository) Archive(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&AuthorModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "归档作者失败")
	}
	if result.RowsAffected == 0 {
		return catalog.ErrAuthorNotFound
	}
	return nil
}

func (r *authorRepository) List(ctx context.Context) ([]*catalog.Author, error) {
	var models []AuthorModel
	if err := r.getDB(ctx).Order("name ASC").Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询作者列表失败")
	}
	authors := make([]*catalog.Author, 0, len(models))
	for i := range models {
		authors = append(authors, toAuthorEntity(&models[i]))
	}
	return authors, nil
}

func toAuthorEntity(m *AuthorModel) *catalog.Author {
	return &catalog.Author{
		ID:        m.ID,
		Name:      m.Name,
		Bio:       m.Bio,
		Photo:     m.Photo,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// collectionRepository 书系仓储
type collectionRepository struct {
	baseRepo
}

func NewCollectionRepository(db *gorm.DB) catalog.CollectionRepository {
	return &collectionRepository{baseRepo{db: db}}
}

func (r *collectionRepository) Create(ctx context.Context, c *catalog.Collection) error {
	model := &CollectionModel{
		Name:            c.Name,
		Description:     c.Description,
		Icon:            c.Icon,
		BackgroundColor: c.BackgroundColor,
	}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建书系失败")
	}
	c.ID = model.ID
	c.CreatedAt = model.CreatedAt
	c.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *collectionRepository) FindByID(ctx context.Context, id uint) (*catalog.Collection, error) {
	var model CollectionModel
	if err := r.getDB(ctx).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, catalog.ErrCollectionNotFound
		}
		return nil, apperrors.Wrap(err, "查询书系失败")
	}
	return toCollectionEntity(&model), nil
}

func (r *collectionRepository) Update(ctx context.Context, c *catalog.Collection) error {
	result := r.getDB(ctx).Model(&CollectionModel{ID: c.ID}).Updates(map[string]interface{}{
		"name":             c.Name,
		"description":      c.Description,
		"icon":             c.Icon,
		"background_color": c.BackgroundColor,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新书系失败")
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, c.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *collectionRepository) Archive(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&CollectionModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "归档书系失败")
	}
	if result.RowsAffected == 0 {
		return catalog.ErrCollectionNotFound
	}
	return nil
}

func (r *collectionRepository) List(ctx context.Context) ([]*catalog.Collection, error) {
	var models []CollectionModel
	if err := r.getDB(ctx).Order("name ASC").Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询书系列表失败")
	}
	collections := make([]*catalog.Collection, 0, len(models))
	for i := range models {
		collections = append(collections, toCollectionEntity(&models[i]))
	}
	return collections, nil
}

func toCollectionEntity(m *CollectionModel) *catalog.Collection {
	return &catalog.Collection{
		ID:              m.ID,
		Name:            m.Name,
		Description:     m.Description,
		Icon:            m.Icon,
		BackgroundColor: m.BackgroundColor,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// supplierRepository 供应商仓储
type supplierRepository struct {
	baseRepo
}

func NewSupplierRepository(db *gorm.DB) catalog.SupplierRepository {
	return &supplierRepository{baseRepo{db: db}}
}

func (r *supplierRepository) Create(ctx context.Context, s *catalog.Supplier) error {
	model := &SupplierModel{
		CompanyName: s.CompanyName,
		ContactName: s.ContactName,
		Phone:       s.Phone,
		Email:       s.Email,
	}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建供应商失败")
	}
	s.ID = model.ID
	s.CreatedAt = model.CreatedAt
	s.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *supplierRepository) FindByID(ctx context.Context, id uint) (*catalog.Supplier, error) {
	var model SupplierModel
	if err := r.getDB(ctx).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, catalog.ErrSupplierNotFound
		}
		return nil, apperrors.Wrap(err, "查询供应商失败")
	}
	return toSupplierEntity(&model), nil
}

func (r *supplierRepository) Update(ctx context.Context, s *catalog.Supplier) error {
	result := r.getDB(ctx).Model(&SupplierModel{ID: s.ID}).Updates(map[string]interface{}{
		"company_name": s.CompanyName,
		"contact_name": s.ContactName,
		"phone":        s.Phone,
		"email":        s.Email,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新供应商失败")
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, s.ID); err != nil {
			return err
		}
	}
	return nil
}

// DetachBooks 包括已归档图书
func (r *supplierRepository) DetachBooks(ctx context.Context, supplierID uint) error {
	if err := r.getDB(ctx).Unscoped().Model(&BookModel{}).
		Where("supplier_id = ?", supplierID).
		Update("supplier_id", nil).Error; err != nil {
		return apperrors.Wrap(err, "解除图书供应商失败")
	}
	return nil
}

func (r *supplierRepository) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&SupplierModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除供应商失败")
	}
	if result.RowsAffected == 0 {
		return catalog.ErrSupplierNotFound
	}
	return nil
}

func (r *supplierRepository) List(ctx context.Context) ([]*catalog.Supplier, error) {
	var models []SupplierModel
	if err := r.getDB(ctx).Order("company_name ASC").Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询供应商列表失败")
	}
	suppliers := make([]*catalog.Supplier, 0, len(models))
	for i := range models {
		suppliers = append(suppliers, toSupplierEntity(&models[i]))
	}
	return suppliers, nil
}

func toSupplierEntity(m *SupplierModel) *catalog.Supplier {
	return &catalog.Supplier{
		ID:          m.ID,
		CompanyName: m.CompanyName,
		ContactName: m.ContactName,
		Phone:       m.Phone,
		Email:       m.Email,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
