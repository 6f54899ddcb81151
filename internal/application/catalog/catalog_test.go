package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/tintayhojas/internal/application/apptest"
	"github.com/xiebiao/tintayhojas/internal/domain/catalog"
	"github.com/xiebiao/tintayhojas/internal/domain/review"
)

func TestHomeIsCached(t *testing.T) {
	ctx := context.Background()
	store := apptest.NewStore()
	cache := apptest.NewCache()
	images := apptest.NewImages()
	for _, title := range []string{"Uno", "Dos", "Tres", "Cuatro", "Cinco"} {
		b := store.AddBook(title, "10.00", 1)
		b.Recommended = true
		require.NoError(t, store.Books().Update(ctx, b))
	}
	uc := NewHomeUseCase(store.Books(), cache, images.URL, 4, 4)

	home, err := uc.Execute(ctx)
	require.NoError(t, err)
	require.Len(t, home.Recommended, 4)
	assert.Equal(t, "Cinco", home.Recommended[0].Title)
	require.Len(t, home.Newest, 4)
	assert.Equal(t, "Cinco", home.Newest[0].Title)
	assert.Zero(t, cache.Hits)

	store.AddBook("Seis", "10.00", 1)
	home, err = uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Hits)
	assert.Equal(t, "Cinco", home.Newest[0].Title)

	cache.Invalidate(ctx)
	home, err = uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Seis", home.Newest[0].Title)
}

func TestListBooks(t *testing.T) {
	ctx := context.Background()
	store := apptest.NewStore()
	author := store.AddAuthor("Juan Rulfo")
	novela := store.AddCollection("Novela")
	cuento := store.AddCollection("Cuento")
	store.AddBookTo("Pedro Páramo", "10.00", 5, author.ID, novela.ID)
	store.AddBookTo("El llano en llamas", "8.00", 5, author.ID, cuento.ID)
	uc := NewListBooksUseCase(store.Books(), apptest.NewImages().URL)

	page, err := uc.Execute(ctx, catalog.BookFilter{CollectionID: cuento.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, "El llano en llamas", page.List[0].Title)
	assert.Equal(t, "Cuento", page.List[0].CollectionName)
	assert.Equal(t, "8.00", page.List[0].Price)

	page, err = uc.Execute(ctx, catalog.BookFilter{SortBy: "title"})
	require.NoError(t, err)
	assert.Equal(t, 20, page.PageSize)
	require.Len(t, page.List, 2)
	assert.Equal(t, "El llano en llamas", page.List[0].Title)
}

func TestGetBook(t *testing.T) {
	ctx := context.Background()
	store := apptest.NewStore()
	b := store.AddBook("Pedro Páramo", "10.00", 5)
	buyer := store.AddUser("lectora", false)
	store.AddPurchase(buyer.ID, b.ID)
	uc := NewGetBookUseCase(store.Books(), store.Reviews(), store.Orders(), apptest.NewImages().URL)

	page, err := uc.Execute(ctx, b.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "Pedro Páramo", page.Book.Title)
	require.NotNil(t, page.Book.Author)
	assert.Nil(t, page.Eligibility)
	assert.Empty(t, page.Reviews)

	page, err = uc.Execute(ctx, b.ID, buyer.ID)
	require.NoError(t, err)
	require.NotNil(t, page.Eligibility)
	assert.Equal(t, review.Eligibility{CanReview: true}, *page.Eligibility)

	r, err := review.NewReview(buyer.ID, b.ID, 5, "Obra maestra")
	require.NoError(t, err)
	require.NoError(t, store.Reviews().Create(ctx, r))

	page, err = uc.Execute(ctx, b.ID, buyer.ID)
	require.NoError(t, err)
	assert.True(t, page.Eligibility.AlreadyReviewed)
	require.Len(t, page.Reviews, 1)
	assert.Equal(t, "lectora", page.Reviews[0].Username)

	_, err = uc.Execute(ctx, 999, 0)
	assert.ErrorIs(t, err, catalog.ErrBookNotFound)
}

func TestAuthors(t *testing.T) {
	ctx := context.Background()
	store := apptest.NewStore()
	rulfo := store.AddAuthor("Juan Rulfo")
	store.AddAuthor("Elena Garro")
	col := store.AddCollection("Novela")
	store.AddBookTo("Pedro Páramo", "10.00", 5, rulfo.ID, col.ID)
	images := apptest.NewImages()

	list, err := NewListAuthorsUseCase(store.Authors(), images.URL).Execute(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Elena Garro", list[0].Name)

	page, err := NewGetAuthorUseCase(store.Authors(), store.Books(), images.URL).Execute(ctx, rulfo.ID)
	require.NoError(t, err)
	assert.Equal(t, "Juan Rulfo", page.Name)
	require.Len(t, page.Books, 1)

	_, err = NewGetAuthorUseCase(store.Authors(), store.Books(), images.URL).Execute(ctx, 999)
	assert.ErrorIs(t, err, catalog.ErrAuthorNotFound)
}

func TestListCollectionsCached(t *testing.T) {
	ctx := context.Background()
	store := apptest.NewStore()
	cache := apptest.NewCache()
	store.AddCollection("Poesía")
	uc := NewListCollectionsUseCase(store.Collections(), cache)

	list, err := uc.Execute(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, catalog.DefaultCollectionIcon, list[0].Icon)

	store.AddCollection("Ensayo")
	list, err = uc.Execute(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, cache.Hits)
}
