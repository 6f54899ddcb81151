package admin

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/MonkyMars/gecho"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/tintayhojas/internal/application/apptest"
	"github.com/xiebiao/tintayhojas/internal/domain/catalog"
	"github.com/xiebiao/tintayhojas/internal/domain/order"
	"github.com/xiebiao/tintayhojas/internal/domain/review"
	"github.com/xiebiao/tintayhojas/internal/domain/user"

	userapp "github.com/xiebiao/tintayhojas/internal/application/user"
)

type fixture struct {
	store       *apptest.Store
	images      *apptest.Images
	cache       *apptest.Cache
	events      *apptest.Events
	books       *BookUseCase
	authors     *AuthorUseCase
	collections *CollectionUseCase
	suppliers   *SupplierUseCase
	orders      *OrderUseCase
	users       *UserUseCase
	reviews     *ReviewUseCase
	dashboard   *DashboardUseCase
}

func newFixture() *fixture {
	store := apptest.NewStore()
	images := apptest.NewImages()
	cache := apptest.NewCache()
	events := &apptest.Events{}
	logger := gecho.NewDefaultLogger()

	service := user.NewService(store.Users(), user.WithBcryptCost(bcrypt.MinCost))
	register := userapp.NewRegisterUseCase(store, service, store.Users(), store.Profiles(), store.Carts(), logger)

	f := &fixture{
		store:       store,
		images:      images,
		cache:       cache,
		events:      events,
		books:       NewBookUseCase(store, store.Books(), store.Authors(), store.Collections(), store.Suppliers(), store.Carts(), images, cache),
		authors:     NewAuthorUseCase(store, store.Authors(), store.Books(), store.Carts(), images, cache),
		collections: NewCollectionUseCase(store, store.Collections(), store.Books(), store.Carts(), cache),
		suppliers:   NewSupplierUseCase(store, store.Suppliers()),
		orders:      NewOrderUseCase(store, store.Orders(), store.Users(), events, logger),
		users:       NewUserUseCase(store, store.Users(), store.Profiles(), store.Orders(), register, images),
		reviews:     NewReviewUseCase(store.Reviews(), store.Books(), store.Users()),
	}
	f.dashboard = NewDashboardUseCase(f.orders, f.users, f.books, f.authors, f.collections, f.suppliers, f.reviews)
	return f
}

func TestBookCreateStoresImageAndInvalidatesCache(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	author := f.store.AddAuthor("Rulfo")
	coll := f.store.AddCollection("Narrativa")
	supplier := f.store.AddSupplier("Distribuidora Sur")

	b, err := f.books.Create(ctx, BookInput{
		Title:        "Pedro Páramo",
		AuthorID:     author.ID,
		CollectionID: coll.ID,
		SupplierID:   &supplier.ID,
		Price:        decimal.RequireFromString("189.90"),
		Stock:        3,
		Image:        bytes.NewReader([]byte("png")),
	})
	require.NoError(t, err)
	assert.Equal(t, "189.90", b.Price)
	assert.Equal(t, "Rulfo", b.AuthorName)
	assert.Equal(t, "Distribuidora Sur", b.SupplierName)
	assert.Equal(t, "/media/libros/imgx.png", b.Image)
	assert.Equal(t, 1, f.cache.Invalidated)
}

func TestBookCreateRejectsUnknownRefs(t *testing.T) {
	f := newFixture()
	coll := f.store.AddCollection("Narrativa")

	_, err := f.books.Create(context.Background(), BookInput{
		Title: "Sin autor", AuthorID: 999, CollectionID: coll.ID,
		Price: decimal.NewFromInt(10), Stock: 1,
	})
	assert.ErrorIs(t, err, catalog.ErrAuthorNotFound)
	assert.Zero(t, f.cache.Invalidated)
}

func TestBookCreateFailureRemovesImage(t *testing.T) {
	f := newFixture()
	author := f.store.AddAuthor("Rulfo")
	coll := f.store.AddCollection("Narrativa")
	f.store.FailOn("book.Create", errors.New("deadlock"))

	_, err := f.books.Create(context.Background(), BookInput{
		Title: "Pedro Páramo", AuthorID: author.ID, CollectionID: coll.ID,
		Price: decimal.NewFromInt(100), Stock: 1, Image: bytes.NewReader([]byte("png")),
	})
	require.Error(t, err)
	assert.Equal(t, []string{"libros/imgx.png"}, f.images.Deleted)
	assert.Empty(t, f.images.Saved)
	assert.Zero(t, f.cache.Invalidated)
}

func TestBookUpdateReplacesImage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	author := f.store.AddAuthor("Rulfo")
	coll := f.store.AddCollection("Narrativa")

	in := BookInput{
		Title: "El llano en llamas", AuthorID: author.ID, CollectionID: coll.ID,
		Price: decimal.NewFromInt(150), Stock: 2, Image: bytes.NewReader([]byte("v1")),
	}
	created, err := f.books.Create(ctx, in)
	require.NoError(t, err)

	in.Image = bytes.NewReader([]byte("v2"))
	in.Stock = 7
	updated, err := f.books.Update(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Stock)
	assert.NotEqual(t, created.Image, updated.Image)
	assert.Equal(t, []string{"libros/imgx.png"}, f.images.Deleted)
}

func TestBookDeleteArchivesAndEmptiesCarts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	b := f.store.AddBook("Aura", "99.00", 5)
	other := f.store.AddBook("Cambio de piel", "120.00", 5)
	u := f.store.AddUser("lectora", false)
	f.store.AddCartItem(u.ID, b.ID, 2)
	f.store.AddCartItem(u.ID, other.ID, 1)

	require.NoError(t, f.books.Delete(ctx, b.ID))

	assert.True(t, f.store.IsArchived("books", b.ID))
	assert.Equal(t, map[uint]int{other.ID: 1}, f.store.CartQuantities(u.ID))
	_, err := f.books.Get(ctx, b.ID)
	assert.ErrorIs(t, err, catalog.ErrBookNotFound)
	assert.Equal(t, 1, f.cache.Invalidated)
}

func TestAuthorDeleteCascadesToBooks(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	author := f.store.AddAuthor("Castellanos")
	coll := f.store.AddCollection("Poesía")
	b1 := f.store.AddBookTo("Balún Canán", "110.00", 4, author.ID, coll.ID)
	b2 := f.store.AddBookTo("Oficio de tinieblas", "130.00", 4, author.ID, coll.ID)
	keep := f.store.AddBook("Otro libro", "80.00", 4)
	u := f.store.AddUser("lectora", false)
	f.store.AddCartItem(u.ID, b1.ID, 1)
	f.store.AddCartItem(u.ID, keep.ID, 1)

	require.NoError(t, f.authors.Delete(ctx, author.ID))

	assert.True(t, f.store.IsArchived("authors", author.ID))
	assert.True(t, f.store.IsArchived("books", b1.ID))
	assert.True(t, f.store.IsArchived("books", b2.ID))
	assert.False(t, f.store.IsArchived("books", keep.ID))
	assert.Equal(t, map[uint]int{keep.ID: 1}, f.store.CartQuantities(u.ID))
}

func TestCollectionDefaultsAndDeleteCascade(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	c, err := f.collections.Create(ctx, CollectionInput{Name: "Ensayo"})
	require.NoError(t, err)
	assert.NotEmpty(t, c.Icon)
	assert.NotEmpty(t, c.BackgroundColor)

	author := f.store.AddAuthor("Paz")
	b := f.store.AddBookTo("El laberinto de la soledad", "160.00", 2, author.ID, c.ID)

	require.NoError(t, f.collections.Delete(ctx, c.ID))
	assert.True(t, f.store.IsArchived("collections", c.ID))
	assert.True(t, f.store.IsArchived("books", b.ID))
	assert.False(t, f.store.IsArchived("authors", author.ID))
	assert.Equal(t, 2, f.cache.Invalidated)
}

func TestSupplierDeleteDetachesBooks(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	author := f.store.AddAuthor("Rulfo")
	coll := f.store.AddCollection("Narrativa")

	s, err := f.suppliers.Create(ctx, SupplierInput{CompanyName: "Papelera", ContactName: "Ana"})
	require.NoError(t, err)
	b, err := f.books.Create(ctx, BookInput{
		Title: "Pedro Páramo", AuthorID: author.ID, CollectionID: coll.ID, SupplierID: &s.ID,
		Price: decimal.NewFromInt(100), Stock: 1,
	})
	require.NoError(t, err)
	require.NotNil(t, f.store.BookSupplier(b.ID))

	require.NoError(t, f.suppliers.Delete(ctx, s.ID))
	assert.Nil(t, f.store.BookSupplier(b.ID))
	assert.False(t, f.store.IsArchived("books", b.ID))

	_, err = f.suppliers.Get(ctx, s.ID)
	assert.ErrorIs(t, err, catalog.ErrSupplierNotFound)
}

func TestSupplierDeleteFailureKeepsBookSupplier(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	author := f.store.AddAuthor("Rulfo")
	coll := f.store.AddCollection("Narrativa")
	s := f.store.AddSupplier("Papelera")
	b := f.store.AddBookTo("Pedro Páramo", "100.00", 1, author.ID, coll.ID)
	_, err := f.books.Update(ctx, b.ID, BookInput{
		Title: "Pedro Páramo", AuthorID: author.ID, CollectionID: coll.ID, SupplierID: &s.ID,
		Price: decimal.NewFromInt(100), Stock: 1,
	})
	require.NoError(t, err)

	f.store.FailOn("supplier.Delete", errors.New("lock wait timeout"))
	require.Error(t, f.suppliers.Delete(ctx, s.ID))

	assert.NotNil(t, f.store.BookSupplier(b.ID))
	_, err = f.suppliers.Get(ctx, s.ID)
	assert.NoError(t, err)
}

func TestManualOrderAndStatusChange(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.store.AddUser("cliente", false)

	o, err := f.orders.Create(ctx, OrderInput{
		UserID: u.ID, Address: "Calle 5", Total: decimal.RequireFromString("250"), Status: "pending",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", o.Status)
	assert.Equal(t, "250.00", o.Total)
	assert.Equal(t, "0.00", o.Taxes)
	assert.Equal(t, order.DefaultPaymentMethod, o.PaymentMethod)
	assert.Empty(t, o.Lines)

	changed, err := f.orders.ChangeStatus(ctx, o.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, "shipped", changed.Status)
	require.Len(t, f.events.Changed, 1)
	assert.Equal(t, "pending", f.events.Changed[0].From)
	assert.Equal(t, "shipped", f.events.Changed[0].To)
	assert.Equal(t, o.OrderNo, f.events.Changed[0].OrderNo)

	// 状态没有变化时不发布事件
	_, err = f.orders.ChangeStatus(ctx, o.ID, "shipped")
	require.NoError(t, err)
	assert.Len(t, f.events.Changed, 1)

	_, err = f.orders.ChangeStatus(ctx, o.ID, "cancelled")
	assert.ErrorIs(t, err, order.ErrInvalidStatus)
}

func TestManualOrderValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.store.AddUser("cliente", false)

	_, err := f.orders.Create(ctx, OrderInput{UserID: 999, Address: "Calle 5", Total: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = f.orders.Create(ctx, OrderInput{UserID: u.ID, Address: "Calle 5", Total: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, order.ErrInvalidTotal)

	_, err = f.orders.Create(ctx, OrderInput{UserID: u.ID, Address: " ", Total: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, order.ErrAddressRequired)
	assert.Zero(t, f.store.OrderCount())
}

func TestOrderDeleteFailureKeepsLines(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.store.AddUser("cliente", false)
	b := f.store.AddBook("Aura", "99.00", 5)
	f.store.AddPurchase(u.ID, b.ID)

	list, err := f.orders.List(ctx, 1, 10)
	require.NoError(t, err)
	id := list.List[0].ID

	f.store.FailOn("order.Delete", errors.New("lock wait timeout"))
	require.Error(t, f.orders.Delete(ctx, id))

	o, err := f.orders.Get(ctx, id)
	require.NoError(t, err)
	assert.Len(t, o.Lines, 1, "删除失败时明细随事务回滚")
}

func TestOrderEditAndDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.store.AddUser("cliente", false)
	b := f.store.AddBook("Aura", "99.00", 5)
	f.store.AddPurchase(u.ID, b.ID)

	list, err := f.orders.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, list.List, 1)
	id := list.List[0].ID

	edited, err := f.orders.Edit(ctx, id, OrderInput{Address: "Nueva 10", PaymentMethod: "efectivo", Total: decimal.NewFromInt(120), Status: "shipped"})
	require.NoError(t, err)
	assert.Equal(t, "Nueva 10", edited.Address)
	assert.Equal(t, "efectivo", edited.PaymentMethod)
	assert.Equal(t, "120.00", edited.Total)
	assert.Len(t, f.events.Changed, 1)

	require.NoError(t, f.orders.Delete(ctx, id))
	_, err = f.orders.Get(ctx, id)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestUserCreateListAndEdit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.store.PutUser(user.User{Username: "root", Email: "root@example.com", IsStaff: true, IsSuperuser: true})

	created, err := f.users.Create(ctx, userapp.RegisterRequest{
		Username: "empleada", Email: "empleada@example.com", Password: "secreto123", IsStaff: true, IsSuperuser: true,
	})
	require.NoError(t, err)
	assert.True(t, created.IsStaff)
	assert.False(t, created.IsSuperuser)
	assert.True(t, f.store.HasCart(created.ID))

	page, err := f.users.List(ctx, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	assert.Equal(t, "empleada", page.List[0].Username)

	updated, err := f.users.Update(ctx, created.ID, UserInput{Username: "empleada2", Email: "nuevo@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "empleada2", updated.Username)
	assert.False(t, updated.IsStaff)

	_, err = f.users.Update(ctx, created.ID, UserInput{Username: "con espacio", Email: "x@example.com"})
	assert.ErrorIs(t, err, user.ErrInvalidUsername)
}

func TestUserDetailIncludesOrders(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.store.AddUser("cliente", false)
	b := f.store.AddBook("Aura", "99.00", 5)
	f.store.AddPurchase(u.ID, b.ID)

	d, err := f.users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "cliente", d.User.Username)
	require.NotNil(t, d.Profile)
	require.Len(t, d.Orders, 1)
	assert.Equal(t, "Aura", d.Orders[0].Lines[0].BookTitle)
}

func TestUserDeleteCascadesAndProtectsSuperuser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	root := f.store.PutUser(user.User{Username: "root", Email: "root@example.com", IsStaff: true, IsSuperuser: true})
	u := f.store.AddUser("cliente", false)
	b := f.store.AddBook("Aura", "99.00", 5)
	f.store.AddPurchase(u.ID, b.ID)
	_, err := f.reviews.Create(ctx, ReviewInput{BookID: b.ID, UserID: u.ID, Rating: 5, Comment: "Breve y perfecta"})
	require.NoError(t, err)

	err = f.users.Delete(ctx, root.ID)
	assert.ErrorIs(t, err, user.ErrSuperuserProtected)
	assert.Equal(t, 2, f.store.UserCount())

	require.NoError(t, f.users.Delete(ctx, u.ID))
	assert.Equal(t, 1, f.store.UserCount())
	assert.False(t, f.store.HasCart(u.ID))
	assert.False(t, f.store.HasProfile(u.ID))
	assert.Zero(t, f.store.OrderCount())
	assert.Zero(t, f.store.ReviewCount())
}

func TestReviewCRUD(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.store.AddUser("cliente", false)
	b := f.store.AddBook("Aura", "99.00", 5)

	// 后台创建不要求购买记录
	r, err := f.reviews.Create(ctx, ReviewInput{BookID: b.ID, UserID: u.ID, Rating: 4, Comment: "Inquietante"})
	require.NoError(t, err)
	assert.Equal(t, "Aura", r.BookTitle)
	assert.Equal(t, "cliente", r.Username)

	_, err = f.reviews.Create(ctx, ReviewInput{BookID: b.ID, UserID: u.ID, Rating: 3, Comment: "Otra vez"})
	assert.ErrorIs(t, err, review.ErrDuplicate)

	_, err = f.reviews.Create(ctx, ReviewInput{BookID: b.ID, UserID: u.ID, Rating: 9, Comment: "x"})
	assert.ErrorIs(t, err, review.ErrInvalidRating)

	edited, err := f.reviews.Update(ctx, r.ID, 2, "Cambié de opinión")
	require.NoError(t, err)
	assert.Equal(t, 2, edited.Rating)

	page, err := f.reviews.List(ctx, review.Filter{BookID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	require.NoError(t, f.reviews.Delete(ctx, r.ID))
	_, err = f.reviews.Get(ctx, r.ID)
	assert.ErrorIs(t, err, review.ErrReviewNotFound)
}

func TestDashboard(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.store.PutUser(user.User{Username: "root", Email: "root@example.com", IsStaff: true, IsSuperuser: true})
	u := f.store.AddUser("cliente", false)
	b := f.store.AddBook("Aura", "99.00", 5)
	fuentes := f.store.AddAuthor("Carlos Fuentes")
	novela := f.store.AddCollection("Novela")
	other := f.store.AddBookTo("Cambio de piel", "120.00", 5, fuentes.ID, novela.ID)
	f.store.AddSupplier("Papelera")
	f.store.AddPurchase(u.ID, b.ID)
	f.store.AddPurchase(u.ID, other.ID)
	_, err := f.reviews.Create(ctx, ReviewInput{BookID: b.ID, UserID: u.ID, Rating: 5, Comment: "Sí"})
	require.NoError(t, err)
	_, err = f.reviews.Create(ctx, ReviewInput{BookID: other.ID, UserID: u.ID, Rating: 3, Comment: "Meh"})
	require.NoError(t, err)

	d, err := f.dashboard.Execute(ctx, review.Filter{BookID: other.ID})
	require.NoError(t, err)
	assert.Len(t, d.Orders.List, 2)
	assert.Len(t, d.Users.List, 1)
	assert.Len(t, d.Books.List, 2)
	assert.Equal(t, "Aura", d.Books.List[0].Title)
	assert.Len(t, d.Authors, 2)
	assert.Len(t, d.Collections, 2)
	assert.Len(t, d.Suppliers, 1)
	require.Len(t, d.Reviews.List, 1)
	assert.Equal(t, "Cambio de piel", d.Reviews.List[0].BookTitle)
}
