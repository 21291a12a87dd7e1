package dining

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/palmcourt/hotel-admin/internal/domain"
	"github.com/palmcourt/hotel-admin/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := gateway.New(gateway.Options{BaseURL: srv.URL + "/admin", Session: gateway.NewMemorySession("tok")})
	require.NoError(t, err)
	return NewService(client)
}

func writeData(w http.ResponseWriter, status int, data string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, `{"success":true,"message":"ok","data":`+data+`}`)
}

func ptr[T any](v T) *T {
	return &v
}

func TestListMenuItemsNormalizesSpiceLevel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin/dining/menu", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, `[
			{"id":"m1","name":"Chicken 65","category":{"id":"c1","name":"Starters"},"basePrice":320,"isVeg":false,"preparationTime":20,"spiceLevel":"SPICY","isAvailable":true,"images":[]},
			{"id":"m2","name":"Kulfi","category":{"id":"c2","name":"Desserts"},"basePrice":120,"isVeg":true,"preparationTime":5,"spiceLevel":"LOW","isAvailable":false,"images":["/uploads/kulfi.png"]}
		]`)
	})
	s := newTestService(t, mux)

	items, err := s.ListMenuItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, domain.SpiceHot, items[0].SpiceLevel)
	assert.Equal(t, domain.SpiceMild, items[1].SpiceLevel)
	assert.Equal(t, "Desserts", items[1].Category.Name)
	assert.Equal(t, []string{"/uploads/kulfi.png"}, items[1].Images)
}

func TestListCategoriesNullIsEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin/dining/categories", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, `null`)
	})
	s := newTestService(t, mux)

	categories, err := s.ListCategories(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, categories)
	assert.Empty(t, categories)
}

func TestCreateMenuItemSendsMultipart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /admin/dining/menu", func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "Mango Lassi", r.FormValue("name"))
		assert.Equal(t, "c5", r.FormValue("category"))
		assert.Equal(t, "149.5", r.FormValue("basePrice"))
		assert.Equal(t, "true", r.FormValue("isVeg"))
		assert.Equal(t, "MILD", r.FormValue("spiceLevel"))
		_, hasDescription := r.MultipartForm.Value["description"]
		assert.False(t, hasDescription)
		assert.Len(t, r.MultipartForm.File["images"], 2)

		writeData(w, http.StatusCreated, `{"id":"m9","name":"Mango Lassi","category":{"id":"c5","name":"Beverages"},"basePrice":149.5,"isVeg":true,"preparationTime":5,"spiceLevel":"MILD","isAvailable":true,"images":["/uploads/a.png","/uploads/b.png"]}`)
	})
	s := newTestService(t, mux)

	item, err := s.CreateMenuItem(context.Background(), MenuItemInput{
		Name:       ptr("Mango Lassi"),
		CategoryID: ptr("c5"),
		BasePrice:  ptr(149.5),
		IsVeg:      ptr(true),
		SpiceLevel: ptr(domain.SpiceMild),
		Images: []Image{
			{Filename: "a.png", Content: []byte("a")},
			{Filename: "b.png", Content: []byte("b")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "m9", item.ID)
	assert.Len(t, item.Images, 2)
}

func TestToggleAvailability(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /admin/dining/menu/m1/availability", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, `{"id":"m1","name":"Kulfi","isAvailable":false}`)
	})
	s := newTestService(t, mux)

	item, err := s.ToggleAvailability(context.Background(), "m1")
	require.NoError(t, err)
	assert.False(t, item.IsAvailable)
}

func TestDeleteCategoryPropagatesServerMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /admin/dining/categories/c1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"success":false,"message":"category still has menu items","data":null}`)
	})
	s := newTestService(t, mux)

	err := s.DeleteCategory(context.Background(), "c1")
	require.Error(t, err)
	assert.True(t, gateway.IsKind(err, gateway.KindServer))
	assert.Equal(t, "category still has menu items", gateway.UserMessage(err))
}

func TestCreateCategoryRequiresName(t *testing.T) {
	s := newTestService(t, http.NotFoundHandler())

	_, err := s.CreateCategory(context.Background(), CategoryInput{})
	assert.Error(t, err)
}

func TestUpdateCategory(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /admin/dining/categories/c1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.FormValue("sortOrder"))
		assert.Equal(t, "false", r.FormValue("isActive"))
		writeData(w, http.StatusOK, `{"id":"c1","name":"Salads","sortOrder":3,"isActive":false}`)
	})
	s := newTestService(t, mux)

	c, err := s.UpdateCategory(context.Background(), "c1", CategoryInput{SortOrder: ptr(3), IsActive: ptr(false)})
	require.NoError(t, err)
	require.NotNil(t, c.SortOrder)
	assert.Equal(t, int32(3), *c.SortOrder)
	assert.False(t, *c.IsActive)
}

func TestLoadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dish.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))

	img, err := LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, "dish.png", img.Filename)
	assert.Equal(t, []byte("png"), img.Content)

	_, err = LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
