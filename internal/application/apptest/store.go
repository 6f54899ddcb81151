// Package apptest 用例测试使用的内存仓储
// Store.Transaction在fn返回错误时恢复快照，和数据库事务一样全部回滚
package apptest

import (
	"context"
	"encoding/json"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/tintayhojas/internal/domain/cart"
	"github.com/xiebiao/tintayhojas/internal/domain/catalog"
	"github.com/xiebiao/tintayhojas/internal/domain/order"
	"github.com/xiebiao/tintayhojas/internal/domain/review"
	"github.com/xiebiao/tintayhojas/internal/domain/user"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type cartItem struct {
	ID       uint
	CartID   uint
	BookID   uint
	Quantity int
}

type state struct {
	seq         uint
	authors     map[uint]catalog.Author
	collections map[uint]catalog.Collection
	suppliers   map[uint]catalog.Supplier
	books       map[uint]catalog.Book
	archived    map[string]map[uint]bool // authors / collections / books
	users       map[uint]user.User
	profiles    map[uint]user.Profile // key: user id
	carts       map[uint]cart.Cart
	items       map[uint]cartItem
	orders      map[uint]order.Order
	reviews     map[uint]review.Review
}

func newState() state {
	return state{
		authors:     map[uint]catalog.Author{},
		collections: map[uint]catalog.Collection{},
		suppliers:   map[uint]catalog.Supplier{},
		books:       map[uint]catalog.Book{},
		archived:    map[string]map[uint]bool{"authors": {}, "collections": {}, "books": {}},
		users:       map[uint]user.User{},
		profiles:    map[uint]user.Profile{},
		carts:       map[uint]cart.Cart{},
		items:       map[uint]cartItem{},
		orders:      map[uint]order.Order{},
		reviews:     map[uint]review.Review{},
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s state) clone() state {
	c := s
	c.authors = copyMap(s.authors)
	c.collections = copyMap(s.collections)
	c.suppliers = copyMap(s.suppliers)
	c.books = copyMap(s.books)
	c.archived = map[string]map[uint]bool{}
	for k, v := range s.archived {
		c.archived[k] = copyMap(v)
	}
	c.users = copyMap(s.users)
	c.profiles = copyMap(s.profiles)
	c.carts = copyMap(s.carts)
	c.items = copyMap(s.items)
	c.orders = make(map[uint]order.Order, len(s.orders))
	for k, o := range s.orders {
		o.Lines = append([]order.Line(nil), o.Lines...)
		c.orders[k] = o
	}
	c.reviews = copyMap(s.reviews)
	return c
}

// Store 内存数据库
type Store struct {
	mu    sync.Mutex
	st    state
	fails map[string]error

	Transactions int // 成功提交的事务数
}

func NewStore() *Store {
	return &Store{st: newState(), fails: map[string]error{}}
}

// Transaction 实现port.TxManager
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.Transactions++
	s.mu.Unlock()
	return nil
}

// FailOn 让名为op的仓储操作返回err（如 "order.Create"、"book.UpdateStock"）
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fails[op] = err
}

func (s *Store) fail(op string) error {
	return s.fails[op]
}

func (s *Store) nextID() uint {
	s.st.seq++
	return s.st.seq
}

func (s *Store) stamp() time.Time {
	return epoch.Add(time.Duration(s.st.seq) * time.Minute)
}

// =========================================
// 种子数据
// =========================================

func (s *Store) AddAuthor(name string) *catalog.Author {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := catalog.Author{ID: s.nextID(), Name: name}
	a.CreatedAt = s.stamp()
	s.st.authors[a.ID] = a
	return &a
}

func (s *Store) AddCollection(name string) *catalog.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := catalog.Collection{ID: s.nextID(), Name: name}
	c.ApplyDefaults()
	s.st.collections[c.ID] = c
	return &c
}

func (s *Store) AddSupplier(company string) *catalog.Supplier {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp := catalog.Supplier{ID: s.nextID(), CompanyName: company, ContactName: "Contacto"}
	s.st.suppliers[sp.ID] = sp
	return &sp
}

// AddBook 没有作者/书系时自动创建
func (s *Store) AddBook(title, price string, stock int) *catalog.Book {
	var authorID, collectionID uint
	s.mu.Lock()
	for id := range s.st.authors {
		authorID = id
		break
	}
	for id := range s.st.collections {
		collectionID = id
		break
	}
	s.mu.Unlock()
	if authorID == 0 {
		authorID = s.AddAuthor("Juan Rulfo").ID
	}
	if collectionID == 0 {
		collectionID = s.AddCollection("Clásicos").ID
	}
	return s.AddBookTo(title, price, stock, authorID, collectionID)
}

func (s *Store) AddBookTo(title, price string, stock int, authorID, collectionID uint) *catalog.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := catalog.Book{
		ID:           s.nextID(),
		Title:        title,
		AuthorID:     authorID,
		CollectionID: collectionID,
		Price:        decimal.RequireFromString(price),
		Stock:        stock,
	}
	b.CreatedAt = s.stamp()
	b.UpdatedAt = b.CreatedAt
	s.st.books[b.ID] = b
	return &b
}

// AddUser 创建用户并配好购物车和资料
func (s *Store) AddUser(username string, staff bool) *user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user.User{
		ID:         s.nextID(),
		Username:   username,
		Email:      username + "@example.com",
		Password:   "$2a$04$invalid",
		IsStaff:    staff,
		DateJoined: s.stamp(),
	}
	s.st.users[u.ID] = u
	s.st.profiles[u.ID] = user.Profile{ID: s.nextID(), UserID: u.ID}
	c := cart.Cart{ID: s.nextID(), UserID: u.ID, CreatedAt: s.stamp()}
	s.st.carts[c.ID] = c
	return &u
}

// PutUser 直接写入用户（如超级管理员）
func (s *Store) PutUser(u user.User) *user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.nextID()
	}
	s.st.users[u.ID] = u
	return &u
}

func (s *Store) AddCartItem(userID, bookID uint, quantity int) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cartOf(userID)
	if !ok {
		c = cart.Cart{ID: s.nextID(), UserID: userID}
		s.st.carts[c.ID] = c
	}
	item := cartItem{ID: s.nextID(), CartID: c.ID, BookID: bookID, Quantity: quantity}
	s.st.items[item.ID] = item
	return item.ID
}

// AddPurchase 写入一张包含该图书的已支付订单
func (s *Store) AddPurchase(userID, bookID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := order.Order{
		ID:      s.nextID(),
		OrderNo: order.GenerateOrderNo(),
		UserID:  userID,
		Address: "Calle 1",
		Status:  order.StatusPaid,
		Lines:   []order.Line{{ID: s.nextID(), BookID: bookID, Quantity: 1, UnitPrice: decimal.NewFromInt(1)}},
	}
	s.st.orders[o.ID] = o
}

// =========================================
// 断言辅助
// =========================================

func (s *Store) Stock(bookID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.books[bookID].Stock
}

func (s *Store) SetPrice(bookID uint, price string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.st.books[bookID]
	b.Price = decimal.RequireFromString(price)
	s.st.books[bookID] = b
}

// CartQuantities 用户购物车中 bookID → 数量
func (s *Store) CartQuantities(userID uint) map[uint]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[uint]int{}
	c, ok := s.cartOf(userID)
	if !ok {
		return out
	}
	for _, it := range s.st.items {
		if it.CartID == c.ID {
			out[it.BookID] = it.Quantity
		}
	}
	return out
}

func (s *Store) HasCart(userID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cartOf(userID)
	return ok
}

func (s *Store) HasProfile(userID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.st.profiles[userID]
	return ok
}

func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.orders)
}

func (s *Store) ReviewCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.reviews)
}

func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.users)
}

func (s *Store) IsArchived(kind string, id uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.archived[kind][id]
}

func (s *Store) BookSupplier(bookID uint) *uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.books[bookID].SupplierID
}

func (s *Store) cartOf(userID uint) (cart.Cart, bool) {
	for _, c := range s.st.carts {
		if c.UserID == userID {
			return c, true
		}
	}
	return cart.Cart{}, false
}

func sortedIDs[V any](m map[uint]V) []uint {
	ids := make([]uint, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func paginate[T any](list []T, page, pageSize int) []T {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= len(list) {
		return []T{}
	}
	end := start + pageSize
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}

// =========================================
// 其他测试替身
// =========================================

// Images 内存图片存储
type Images struct {
	mu      sync.Mutex
	Saved   map[string][]byte
	Deleted []string
	Err     error
}

func NewImages() *Images {
	return &Images{Saved: map[string][]byte{}}
}

func (i *Images) Save(_ context.Context, kind string, r io.Reader) (string, error) {
	if i.Err != nil {
		return "", i.Err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	name := kind + "/img" + strings.Repeat("x", len(i.Saved)+1) + ".png"
	i.Saved[name] = data
	return name, nil
}

func (i *Images) Delete(_ context.Context, stored string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Deleted = append(i.Deleted, stored)
	delete(i.Saved, stored)
	return nil
}

func (i *Images) URL(stored string) string {
	if stored == "" {
		return ""
	}
	return "/media/" + stored
}

// Cache 内存目录缓存，和Redis实现一样按JSON序列化
type Cache struct {
	mu          sync.Mutex
	values      map[string][]byte
	Hits        int
	Invalidated int
}

func NewCache() *Cache {
	return &Cache{values: map[string][]byte{}}
}

func (c *Cache) Get(_ context.Context, name string, dest interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.values[name]
	if !ok || json.Unmarshal(data, dest) != nil {
		return false
	}
	c.Hits++
	return true
}

func (c *Cache) Set(_ context.Context, name string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name] = data
}

func (c *Cache) Invalidate(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = map[string][]byte{}
	c.Invalidated++
}

// Events 记录发布的订单事件
type Events struct {
	mu      sync.Mutex
	Err     error
	Paid    []order.PaidEvent
	Changed []order.StatusChangedEvent
}

func (e *Events) PublishOrderPaid(_ context.Context, event order.PaidEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	e.Paid = append(e.Paid, event)
	return nil
}

func (e *Events) PublishOrderStatusChanged(_ context.Context, event order.StatusChangedEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	e.Changed = append(e.Changed, event)
	return nil
}

// Sessions 内存会话存储
type Sessions struct {
	mu        sync.Mutex
	Sessions  map[uint]map[string]interface{}
	Blacklist map[string]time.Duration
}

func NewSessions() *Sessions {
	return &Sessions{Sessions: map[uint]map[string]interface{}{}, Blacklist: map[string]time.Duration{}}
}

func (s *Sessions) SaveSession(_ context.Context, userID uint, data map[string]interface{}, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sessions[userID] = data
	return nil
}

func (s *Sessions) DeleteSession(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Sessions, userID)
	return nil
}

func (s *Sessions) AddToBlacklist(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Blacklist[token] = ttl
	return nil
}

func (s *Sessions) IsInBlacklist(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Blacklist[token]
	return ok, nil
}
