package admin

import (
	"context"
	"strings"

	"github.com/xiebiao/tintayhojas/internal/application/port"
	"github.com/xiebiao/tintayhojas/internal/application/view"
	"github.com/xiebiao/tintayhojas/internal/domain/catalog"
)

// SupplierUseCase 供应商管理
type SupplierUseCase struct {
	txManager port.TxManager
	suppliers catalog.SupplierRepository
}

func NewSupplierUseCase(txManager port.TxManager, suppliers catalog.SupplierRepository) *SupplierUseCase {
	return &SupplierUseCase{txManager: txManager, suppliers: suppliers}
}

type SupplierInput struct {
	CompanyName string
	ContactName string
	Phone       string
	Email       string
}

func (in SupplierInput) apply(s *catalog.Supplier) error {
	s.CompanyName = strings.TrimSpace(in.CompanyName)
	s.ContactName = strings.TrimSpace(in.ContactName)
	s.Phone = strings.TrimSpace(in.Phone)
	s.Email = strings.TrimSpace(in.Email)
	return s.Validate()
}

// List 按公司名排序
func (uc *SupplierUseCase) List(ctx context.Context) ([]view.SupplierView, error) {
	suppliers, err := uc.suppliers.List(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]view.SupplierView, 0, len(suppliers))
	for _, s := range suppliers {
		list = append(list, view.NewSupplier(s))
	}
	return list, nil
}

func (uc *SupplierUseCase) Get(ctx context.Context, id uint) (*view.SupplierView, error) {
	s, err := uc.suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := view.NewSupplier(s)
	return &v, nil
}

func (uc *SupplierUseCase) Create(ctx context.Context, in SupplierInput) (*view.SupplierView, error) {
	s := &catalog.Supplier{}
	if err := in.apply(s); err != nil {
		return nil, err
	}
	if err := uc.suppliers.Create(ctx, s); err != nil {
		return nil, err
	}
	v := view.NewSupplier(s)
	return &v, nil
}

func (uc *SupplierUseCase) Update(ctx context.Context, id uint, in SupplierInput) (*view.SupplierView, error) {
	s, err := uc.suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(s); err != nil {
		return nil, err
	}
	if err := uc.suppliers.Update(ctx, s); err != nil {
		return nil, err
	}
	v := view.NewSupplier(s)
	return &v, nil
}

// Delete 物理删除，引用它的图书supplier_id置空
func (uc *SupplierUseCase) Delete(ctx context.Context, id uint) error {
	return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if err := uc.suppliers.DetachBooks(txCtx, id); err != nil {
			return err
		}
		return uc.suppliers.Delete(txCtx, id)
	})
}
