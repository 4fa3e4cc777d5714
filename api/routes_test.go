package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/postsadmin/backend/config"
	"github.com/postsadmin/backend/database"
	"github.com/postsadmin/backend/storage"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	conn, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"),
		[]byte("<html><body id=\"posts-page\"></body></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "edit.html"),
		[]byte("<html><body><form id=\"edit-post-form\"></form></body></html>"), 0o644))
	t.Setenv("STATIC_DIR", staticDir)

	return newRouter(database.New(db), storage.NewDisk(t.TempDir(), "/storage"),
		withConfig(config.New()))
}

func TestAdminPageRoutes(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "posts-page")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/posts", rec.Header().Get("Location"))
}

// The action cell links to /posts/edit/{id}; the router must serve a page
// there rather than falling through to a 404.
func TestEditPageRoute(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/edit/5", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "edit-post-form")
}
