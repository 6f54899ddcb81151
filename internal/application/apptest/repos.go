package apptest

import (
	"context"
	"sort"
	"time"

	"github.com/xiebiao/tintayhojas/internal/domain/cart"
	"github.com/xiebiao/tintayhojas/internal/domain/catalog"
	"github.com/xiebiao/tintayhojas/internal/domain/order"
	"github.com/xiebiao/tintayhojas/internal/domain/review"
	"github.com/xiebiao/tintayhojas/internal/domain/user"
)

func (s *Store) Books() catalog.BookRepository             { return bookRepo{s} }
func (s *Store) Authors() catalog.AuthorRepository         { return authorRepo{s} }
func (s *Store) Collections() catalog.CollectionRepository { return collectionRepo{s} }
func (s *Store) Suppliers() catalog.SupplierRepository     { return supplierRepo{s} }
func (s *Store) Users() user.Repository                    { return userRepo{s} }
func (s *Store) Profiles() user.ProfileRepository          { return profileRepo{s} }
func (s *Store) Carts() cart.Repository                    { return cartRepo{s} }
func (s *Store) Orders() order.Repository                  { return orderRepo{s} }
func (s *Store) Reviews() review.Repository                { return reviewRepo{s} }

// =========================================
// 图书
// =========================================

type bookRepo struct{ s *Store }

func (r bookRepo) Create(_ context.Context, b *catalog.Book) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("book.Create"); err != nil {
		return err
	}
	b.ID = s.nextID()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.stamp()
	}
	stored := *b
	stored.Author, stored.Collection, stored.Supplier = nil, nil, nil
	s.st.books[b.ID] = stored
	return nil
}

// loadBook 带出关联，调用方持锁
func (s *Store) loadBook(id uint) (*catalog.Book, bool) {
	b, ok := s.st.books[id]
	if !ok || s.st.archived["books"][id] {
		return nil, false
	}
	if a, ok := s.st.authors[b.AuthorID]; ok {
		b.Author = &a
	}
	if c, ok := s.st.collections[b.CollectionID]; ok {
		b.Collection = &c
	}
	if b.SupplierID != nil {
		if sp, ok := s.st.suppliers[*b.SupplierID]; ok {
			b.Supplier = &sp
		}
	}
	return &b, true
}

func (r bookRepo) FindByID(_ context.Context, id uint) (*catalog.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.loadBook(id)
	if !ok {
		return nil, catalog.ErrBookNotFound
	}
	return b, nil
}

func (r bookRepo) Update(_ context.Context, b *catalog.Book) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.loadBook(b.ID); !ok {
		return catalog.ErrBookNotFound
	}
	stored := *b
	stored.Author, stored.Collection, stored.Supplier = nil, nil, nil
	stored.UpdatedAt = time.Now()
	s.st.books[b.ID] = stored
	return nil
}

func (r bookRepo) Archive(_ context.Context, id uint) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.loadBook(id); !ok {
		return catalog.ErrBookNotFound
	}
	s.st.archived["books"][id] = true
	return nil
}

func (r bookRepo) archiveWhere(match func(b catalog.Book) bool) []uint {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []uint{}
	for _, id := range sortedIDs(s.st.books) {
		if s.st.archived["books"][id] || !match(s.st.books[id]) {
			continue
		}
		s.st.archived["books"][id] = true
		ids = append(ids, id)
	}
	return ids
}

func (r bookRepo) ArchiveByAuthor(_ context.Context, authorID uint) ([]uint, error) {
	return r.archiveWhere(func(b catalog.Book) bool { return b.AuthorID == authorID }), nil
}

func (r bookRepo) ArchiveByCollection(_ context.Context, collectionID uint) ([]uint, error) {
	return r.archiveWhere(func(b catalog.Book) bool { return b.CollectionID == collectionID }), nil
}

func (r bookRepo) all(match func(b *catalog.Book) bool) []*catalog.Book {
	list := []*catalog.Book{}
	for _, id := range sortedIDs(r.s.st.books) {
		if b, ok := r.s.loadBook(id); ok && match(b) {
			list = append(list, b)
		}
	}
	return list
}

func newestFirst(list []*catalog.Book) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

func (r bookRepo) List(_ context.Context, f catalog.BookFilter) ([]*catalog.Book, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f.Normalize()
	list := r.all(func(b *catalog.Book) bool {
		if f.CollectionID != 0 && b.CollectionID != f.CollectionID {
			return false
		}
		if f.AuthorID != 0 && b.AuthorID != f.AuthorID {
			return false
		}
		if f.Recommended != nil && b.Recommended != *f.Recommended {
			return false
		}
		return true
	})
	if f.SortBy == "title" {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Title < list[j].Title })
	} else {
		newestFirst(list)
	}
	return paginate(list, f.Page, f.PageSize), int64(len(list)), nil
}

func (r bookRepo) ListRecommended(_ context.Context, limit int) ([]*catalog.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := r.all(func(b *catalog.Book) bool { return b.Recommended })
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return paginate(list, 1, limit), nil
}

func (r bookRepo) ListNewest(_ context.Context, limit int) ([]*catalog.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := r.all(func(*catalog.Book) bool { return true })
	newestFirst(list)
	return paginate(list, 1, limit), nil
}

func (r bookRepo) LockByIDs(_ context.Context, ids []uint) ([]*catalog.Book, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("book.LockByIDs"); err != nil {
		return nil, err
	}
	seen := map[uint]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	list := make([]*catalog.Book, 0, len(seen))
	for _, id := range sortedIDs(seen) {
		b, ok := s.loadBook(id)
		if !ok {
			return nil, catalog.ErrBookNotFound
		}
		list = append(list, b)
	}
	return list, nil
}

func (r bookRepo) UpdateStock(_ context.Context, id uint, delta int) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("book.UpdateStock"); err != nil {
		return err
	}
	b, ok := s.st.books[id]
	if !ok || s.st.archived["books"][id] {
		return catalog.ErrBookNotFound
	}
	if b.Stock+delta < 0 {
		return catalog.ErrInsufficientStock
	}
	b.Stock += delta
	s.st.books[id] = b
	return nil
}

// =========================================
// 作者 / 书系 / 供应商
// =========================================

type authorRepo struct{ s *Store }

func (r authorRepo) Create(_ context.Context, a *catalog.Author) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = r.s.nextID()
	stored := *a
	stored.Books = nil
	r.s.st.authors[a.ID] = stored
	return nil
}

func (r authorRepo) FindByID(_ context.Context, id uint) (*catalog.Author, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.st.authors[id]
	if !ok || r.s.st.archived["authors"][id] {
		return nil, catalog.ErrAuthorNotFound
	}
	return &a, nil
}

func (r authorRepo) Update(_ context.Context, a *catalog.Author) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.authors[a.ID]; !ok || r.s.st.archived["authors"][a.ID] {
		return catalog.ErrAuthorNotFound
	}
	stored := *a
	stored.Books = nil
	r.s.st.authors[a.ID] = stored
	return nil
}

func (r authorRepo) Archive(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.authors[id]; !ok || r.s.st.archived["authors"][id] {
		return catalog.ErrAuthorNotFound
	}
	r.s.st.archived["authors"][id] = true
	return nil
}

func (r authorRepo) List(_ context.Context) ([]*catalog.Author, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := []*catalog.Author{}
	for _, id := range sortedIDs(r.s.st.authors) {
		if r.s.st.archived["authors"][id] {
			continue
		}
		a := r.s.st.authors[id]
		list = append(list, &a)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

type collectionRepo struct{ s *Store }

func (r collectionRepo) Create(_ context.Context, c *catalog.Collection) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = r.s.nextID()
	r.s.st.collections[c.ID] = *c
	return nil
}

func (r collectionRepo) FindByID(_ context.Context, id uint) (*catalog.Collection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.st.collections[id]
	if !ok || r.s.st.archived["collections"][id] {
		return nil, catalog.ErrCollectionNotFound
	}
	return &c, nil
}

func (r collectionRepo) Update(_ context.Context, c *catalog.Collection) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.collections[c.ID]; !ok || r.s.st.archived["collections"][c.ID] {
		return catalog.ErrCollectionNotFound
	}
	r.s.st.collections[c.ID] = *c
	return nil
}

func (r collectionRepo) Archive(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.collections[id]; !ok || r.s.st.archived["collections"][id] {
		return catalog.ErrCollectionNotFound
	}
	r.s.st.archived["collections"][id] = true
	return nil
}

func (r collectionRepo) List(_ context.Context) ([]*catalog.Collection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := []*catalog.Collection{}
	for _, id := range sortedIDs(r.s.st.collections) {
		if r.s.st.archived["collections"][id] {
			continue
		}
		c := r.s.st.collections[id]
		list = append(list, &c)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

type supplierRepo struct{ s *Store }

func (r supplierRepo) Create(_ context.Context, sp *catalog.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp.ID = r.s.nextID()
	r.s.st.suppliers[sp.ID] = *sp
	return nil
}

func (r supplierRepo) FindByID(_ context.Context, id uint) (*catalog.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.st.suppliers[id]
	if !ok {
		return nil, catalog.ErrSupplierNotFound
	}
	return &sp, nil
}

func (r supplierRepo) Update(_ context.Context, sp *catalog.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.suppliers[sp.ID]; !ok {
		return catalog.ErrSupplierNotFound
	}
	r.s.st.suppliers[sp.ID] = *sp
	return nil
}

func (r supplierRepo) DetachBooks(_ context.Context, supplierID uint) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("supplier.DetachBooks"); err != nil {
		return err
	}
	for bid, b := range s.st.books {
		if b.SupplierID != nil && *b.SupplierID == supplierID {
			b.SupplierID = nil
			s.st.books[bid] = b
		}
	}
	return nil
}

func (r supplierRepo) Delete(_ context.Context, id uint) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("supplier.Delete"); err != nil {
		return err
	}
	if _, ok := s.st.suppliers[id]; !ok {
		return catalog.ErrSupplierNotFound
	}
	delete(s.st.suppliers, id)
	return nil
}

func (r supplierRepo) List(_ context.Context) ([]*catalog.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := []*catalog.Supplier{}
	for _, id := range sortedIDs(r.s.st.suppliers) {
		sp := r.s.st.suppliers[id]
		list = append(list, &sp)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CompanyName < list[j].CompanyName })
	return list, nil
}

// =========================================
// 用户
// =========================================

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *user.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.st.users {
		if existing.Username == u.Username {
			return user.ErrUsernameDuplicate
		}
		if existing.Email == u.Email {
			return user.ErrEmailDuplicate
		}
	}
	u.ID = s.nextID()
	s.st.users[u.ID] = *u
	return nil
}

func (r userRepo) FindByID(_ context.Context, id uint) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("user.FindByID"); err != nil {
		return nil, err
	}
	u, ok := r.s.st.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

func (r userRepo) find(match func(u user.User) bool) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range sortedIDs(r.s.st.users) {
		if u := r.s.st.users[id]; match(u) {
			return &u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r userRepo) FindByUsername(_ context.Context, username string) (*user.User, error) {
	return r.find(func(u user.User) bool { return u.Username == username })
}

func (r userRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	return r.find(func(u user.User) bool { return u.Email == email })
}

func (r userRepo) Update(_ context.Context, u *user.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	for id, existing := range s.st.users {
		if id == u.ID {
			continue
		}
		if existing.Username == u.Username {
			return user.ErrUsernameDuplicate
		}
		if existing.Email == u.Email {
			return user.ErrEmailDuplicate
		}
	}
	s.st.users[u.ID] = *u
	return nil
}

func (r userRepo) Delete(_ context.Context, id uint) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	if u.IsSuperuser {
		return user.ErrSuperuserProtected
	}
	for cid, c := range s.st.carts {
		if c.UserID != id {
			continue
		}
		for iid, it := range s.st.items {
			if it.CartID == cid {
				delete(s.st.items, iid)
			}
		}
		delete(s.st.carts, cid)
	}
	for oid, o := range s.st.orders {
		if o.UserID == id {
			delete(s.st.orders, oid)
		}
	}
	for rid, rv := range s.st.reviews {
		if rv.UserID == id {
			delete(s.st.reviews, rid)
		}
	}
	delete(s.st.profiles, id)
	delete(s.st.users, id)
	return nil
}

func (r userRepo) List(_ context.Context, p user.ListParams) ([]*user.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := []*user.User{}
	for _, id := range sortedIDs(r.s.st.users) {
		u := r.s.st.users[id]
		if p.ExcludeSuperusers && u.IsSuperuser {
			continue
		}
		list = append(list, &u)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].DateJoined.After(list[j].DateJoined) })
	return paginate(list, p.Page, p.PageSize), int64(len(list)), nil
}

type profileRepo struct{ s *Store }

func (r profileRepo) Create(_ context.Context, p *user.Profile) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("profile.Create"); err != nil {
		return err
	}
	p.ID = s.nextID()
	s.st.profiles[p.UserID] = *p
	return nil
}

func (r profileRepo) FindByUserID(_ context.Context, userID uint) (*user.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.profiles[userID]
	if !ok {
		return nil, user.ErrProfileNotFound
	}
	return &p, nil
}

func (r profileRepo) Update(_ context.Context, p *user.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.profiles[p.UserID]; !ok {
		return user.ErrProfileNotFound
	}
	r.s.st.profiles[p.UserID] = *p
	return nil
}

// =========================================
// 购物车
// =========================================

type cartRepo struct{ s *Store }

// item 带出图书数据，图书已归档时返回false
func (s *Store) item(it cartItem) (*cart.Item, bool) {
	b, ok := s.st.books[it.BookID]
	if !ok || s.st.archived["books"][it.BookID] {
		return nil, false
	}
	c := s.st.carts[it.CartID]
	return &cart.Item{
		ID:        it.ID,
		CartID:    it.CartID,
		BookID:    it.BookID,
		Quantity:  it.Quantity,
		OwnerID:   c.UserID,
		BookTitle: b.Title,
		UnitPrice: b.Price,
		Stock:     b.Stock,
	}, true
}

func (r cartRepo) FindByUserID(_ context.Context, userID uint) (*cart.Cart, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cartOf(userID)
	if !ok {
		return nil, cart.ErrCartNotFound
	}
	c.Items = nil
	for _, id := range sortedIDs(s.st.items) {
		it := s.st.items[id]
		if it.CartID != c.ID {
			continue
		}
		if item, ok := s.item(it); ok {
			c.Items = append(c.Items, item)
		}
	}
	return &c, nil
}

func (r cartRepo) Create(_ context.Context, c *cart.Cart) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("cart.Create"); err != nil {
		return err
	}
	c.ID = s.nextID()
	stored := *c
	stored.Items = nil
	s.st.carts[c.ID] = stored
	return nil
}

func (r cartRepo) FindItemByID(_ context.Context, itemID uint) (*cart.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.st.items[itemID]
	if !ok {
		return nil, cart.ErrItemNotFound
	}
	item, ok := r.s.item(it)
	if !ok {
		return nil, cart.ErrItemNotFound
	}
	return item, nil
}

func (r cartRepo) FindItem(_ context.Context, cartID, bookID uint) (*cart.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.st.items {
		if it.CartID == cartID && it.BookID == bookID {
			if item, ok := r.s.item(it); ok {
				return item, nil
			}
		}
	}
	return nil, cart.ErrItemNotFound
}

func (r cartRepo) CreateItem(_ context.Context, item *cart.Item) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.st.items {
		if it.CartID == item.CartID && it.BookID == item.BookID {
			return cart.ErrItemExists
		}
	}
	item.ID = s.nextID()
	s.st.items[item.ID] = cartItem{ID: item.ID, CartID: item.CartID, BookID: item.BookID, Quantity: item.Quantity}
	return nil
}

func (r cartRepo) IncrementItem(_ context.Context, itemID uint, delta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.st.items[itemID]
	if !ok {
		return cart.ErrItemNotFound
	}
	it.Quantity += delta
	r.s.st.items[itemID] = it
	return nil
}

func (r cartRepo) UpdateItemQuantity(_ context.Context, itemID uint, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.st.items[itemID]
	if !ok {
		return cart.ErrItemNotFound
	}
	it.Quantity = quantity
	r.s.st.items[itemID] = it
	return nil
}

func (r cartRepo) DeleteItem(_ context.Context, itemID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.items[itemID]; !ok {
		return cart.ErrItemNotFound
	}
	delete(r.s.st.items, itemID)
	return nil
}

func (r cartRepo) ClearItems(_ context.Context, cartID uint) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("cart.ClearItems"); err != nil {
		return err
	}
	for id, it := range s.st.items {
		if it.CartID == cartID {
			delete(s.st.items, id)
		}
	}
	return nil
}

func (r cartRepo) DeleteItemsByBookIDs(_ context.Context, bookIDs []uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	drop := map[uint]bool{}
	for _, id := range bookIDs {
		drop[id] = true
	}
	for id, it := range r.s.st.items {
		if drop[it.BookID] {
			delete(r.s.st.items, id)
		}
	}
	return nil
}

// =========================================
// 订单
// =========================================

type orderRepo struct{ s *Store }

func (r orderRepo) Create(_ context.Context, o *order.Order) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("order.Create"); err != nil {
		return err
	}
	o.ID = s.nextID()
	for i := range o.Lines {
		o.Lines[i].ID = s.nextID()
		o.Lines[i].OrderID = o.ID
	}
	stored := *o
	stored.Lines = append([]order.Line(nil), o.Lines...)
	s.st.orders[o.ID] = stored
	return nil
}

// fill 带出用户名和书名（包括已归档的图书）
func (s *Store) fill(o order.Order) *order.Order {
	o.Username = s.st.users[o.UserID].Username
	o.Lines = append([]order.Line(nil), o.Lines...)
	for i := range o.Lines {
		o.Lines[i].BookTitle = s.st.books[o.Lines[i].BookID].Title
	}
	return &o
}

func (r orderRepo) FindByID(_ context.Context, id uint) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.st.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return r.s.fill(o), nil
}

func (r orderRepo) Update(_ context.Context, o *order.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.st.orders[o.ID]
	if !ok {
		return order.ErrOrderNotFound
	}
	stored.Address = o.Address
	stored.PaymentMethod = o.PaymentMethod
	stored.Total = o.Total
	stored.Status = o.Status
	r.s.st.orders[o.ID] = stored
	return nil
}

func (r orderRepo) DeleteLines(_ context.Context, orderID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("order.DeleteLines"); err != nil {
		return err
	}
	if o, ok := r.s.st.orders[orderID]; ok {
		o.Lines = nil
		r.s.st.orders[orderID] = o
	}
	return nil
}

func (r orderRepo) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("order.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.st.orders[id]; !ok {
		return order.ErrOrderNotFound
	}
	delete(r.s.st.orders, id)
	return nil
}

func (r orderRepo) list(match func(o order.Order) bool, page, pageSize int) ([]*order.Order, int64) {
	list := []*order.Order{}
	ids := sortedIDs(r.s.st.orders)
	for i := len(ids) - 1; i >= 0; i-- {
		if o := r.s.st.orders[ids[i]]; match(o) {
			list = append(list, r.s.fill(o))
		}
	}
	return paginate(list, page, pageSize), int64(len(list))
}

func (r orderRepo) ListByUserID(_ context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list, total := r.list(func(o order.Order) bool { return o.UserID == userID }, page, pageSize)
	return list, total, nil
}

func (r orderRepo) List(_ context.Context, page, pageSize int) ([]*order.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list, total := r.list(func(order.Order) bool { return true }, page, pageSize)
	return list, total, nil
}

func (r orderRepo) HasPurchased(_ context.Context, userID, bookID uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.st.orders {
		if o.UserID != userID {
			continue
		}
		for _, l := range o.Lines {
			if l.BookID == bookID {
				return true, nil
			}
		}
	}
	return false, nil
}

// =========================================
// 书评
// =========================================

type reviewRepo struct{ s *Store }

func (r reviewRepo) Create(_ context.Context, rv *review.Review) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.st.reviews {
		if existing.UserID == rv.UserID && existing.BookID == rv.BookID {
			return review.ErrDuplicate
		}
	}
	rv.ID = s.nextID()
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = s.stamp()
	}
	s.st.reviews[rv.ID] = *rv
	return nil
}

func (s *Store) fillReview(rv review.Review) *review.Review {
	rv.Username = s.st.users[rv.UserID].Username
	rv.BookTitle = s.st.books[rv.BookID].Title
	return &rv
}

func (r reviewRepo) FindByID(_ context.Context, id uint) (*review.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rv, ok := r.s.st.reviews[id]
	if !ok {
		return nil, review.ErrReviewNotFound
	}
	return r.s.fillReview(rv), nil
}

func (r reviewRepo) Update(_ context.Context, rv *review.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.st.reviews[rv.ID]
	if !ok {
		return review.ErrReviewNotFound
	}
	stored.Rating = rv.Rating
	stored.Comment = rv.Comment
	r.s.st.reviews[rv.ID] = stored
	return nil
}

func (r reviewRepo) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.reviews[id]; !ok {
		return review.ErrReviewNotFound
	}
	delete(r.s.st.reviews, id)
	return nil
}

func (r reviewRepo) Exists(_ context.Context, userID, bookID uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rv := range r.s.st.reviews {
		if rv.UserID == userID && rv.BookID == bookID {
			return true, nil
		}
	}
	return false, nil
}

func (r reviewRepo) List(_ context.Context, f review.Filter) ([]*review.Review, int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	list := []*review.Review{}
	for _, rv := range s.st.reviews {
		b, ok := s.st.books[rv.BookID]
		if !ok || s.st.archived["books"][rv.BookID] {
			continue
		}
		if f.BookID != 0 && rv.BookID != f.BookID {
			continue
		}
		if f.AuthorID != 0 && b.AuthorID != f.AuthorID {
			continue
		}
		if f.CollectionID != 0 && b.CollectionID != f.CollectionID {
			continue
		}
		list = append(list, s.fillReview(rv))
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return paginate(list, f.Page, f.PageSize), int64(len(list)), nil
}
