package product_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akhdanrgya/teluhub-client/repository/api"
	"github.com/akhdanrgya/teluhub-client/repository/product"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) product.ProductRepository {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/categories", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","data":[{"id":1,"name":"Makanan","slug":"makanan"}]}`))
	})
	r.HandleFunc("/products/{key}", func(w http.ResponseWriter, r *http.Request) {
		switch mux.Vars(r)["key"] {
		case "kopi-susu", "42":
			_, _ = w.Write([]byte(`{"id":42,"name":"Kopi Susu","slug":"kopi-susu","price":15000,"stock":10}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Produk tidak ditemukan"}`))
		}
	}).Methods(http.MethodGet)
	r.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}).Methods(http.MethodGet)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return product.NewProductRepository(api.NewClient(srv.URL, 5*time.Second))
}

func TestProductRepository_Categories(t *testing.T) {
	repo := newRepo(t)

	got, err := repo.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "makanan", got[0].Slug)
}

func TestProductRepository_GetBySlugAndID(t *testing.T) {
	repo := newRepo(t)

	bySlug, err := repo.GetBySlug(context.Background(), "kopi-susu")
	require.NoError(t, err)
	byID, err := repo.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, bySlug, byID)
	assert.Equal(t, int64(10), byID.Stock)

	_, err = repo.GetBySlug(context.Background(), "teh-tarik")
	assert.Error(t, err)
}

func TestProductRepository_ListEmpty(t *testing.T) {
	repo := newRepo(t)

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
