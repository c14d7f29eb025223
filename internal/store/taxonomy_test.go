package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTaxonomyMock(t *testing.T) (*TaxonomyStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewTaxonomyStore(db), mock
}

func TestCategoryBySlugFound(t *testing.T) {
	s, mock := newTaxonomyMock(t)
	now := time.Now()
	id := uuid.New()

	mock.ExpectQuery("FROM categories WHERE slug").
		WithArgs("food").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "sort_order", "created_at", "updated_at"}).
			AddRow(id, "Food", "food", 0, now, now))

	cat, err := s.CategoryBySlug(context.Background(), "food")
	require.NoError(t, err)
	require.NotNil(t, cat)
	assert.Equal(t, id, cat.ID)
}

func TestCategoryBySlugNotFound(t *testing.T) {
	s, mock := newTaxonomyMock(t)

	mock.ExpectQuery("FROM categories WHERE slug").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "sort_order", "created_at", "updated_at"}))

	cat, err := s.CategoryBySlug(context.Background(), "nope")
	require.NoError(t, err, "a missing slug is not an error")
	assert.Nil(t, cat)
}

func TestSubcategoryBySlugCarriesParent(t *testing.T) {
	s, mock := newTaxonomyMock(t)
	now := time.Now()
	catID, subID := uuid.New(), uuid.New()

	mock.ExpectQuery("FROM subcategories WHERE slug").
		WithArgs("baked-goods").
		WillReturnRows(sqlmock.NewRows([]string{"id", "category_id", "name", "slug", "sort_order", "created_at", "updated_at"}).
			AddRow(subID, catID, "Baked Goods", "baked-goods", 0, now, now))

	sub, err := s.SubcategoryBySlug(context.Background(), "baked-goods")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, catID, sub.CategoryID)
}

func TestListAttachesSubcategories(t *testing.T) {
	s, mock := newTaxonomyMock(t)
	now := time.Now()
	food, drink := uuid.New(), uuid.New()

	mock.ExpectQuery("FROM categories").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "sort_order", "created_at", "updated_at"}).
			AddRow(food, "Food", "food", 0, now, now).
			AddRow(drink, "Drink", "drink", 1, now, now))
	mock.ExpectQuery("FROM subcategories").
		WillReturnRows(sqlmock.NewRows([]string{"id", "category_id", "name", "slug", "sort_order", "created_at", "updated_at"}).
			AddRow(uuid.New(), food, "Baked Goods", "baked-goods", 0, now, now).
			AddRow(uuid.New(), uuid.New(), "Orphaned", "orphaned", 0, now, now))

	cats, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Len(t, cats[0].Subcategories, 1)
	assert.Empty(t, cats[1].Subcategories, "subcategory of an unknown category is dropped")
}

func TestListQueryError(t *testing.T) {
	s, mock := newTaxonomyMock(t)
	mock.ExpectQuery("FROM categories").WillReturnError(errors.New("boom"))

	_, err := s.List(context.Background())
	assert.Error(t, err)
}
