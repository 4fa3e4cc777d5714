package api

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/postsadmin/backend/storage"
)

// setupRoutes mounts the grid endpoint, the two AJAX mutations, the CRUD
// flows and the static admin page.
func setupRoutes(r chi.Router, handlers *routeHandlers, staticDir string, assets storage.Store) {
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		// Grid read endpoint and the narrow AJAX mutations
		r.Get("/posts/data", handlers.postHandler.gridData())
		r.Post("/posts/status-update", handlers.postHandler.updateStatus())
		r.Post("/posts/delete-ajax", handlers.postHandler.deleteAjax())

		// CRUD flows
		r.Post("/posts/store", handlers.postHandler.createPost())
		r.Post("/posts/update/{postID}", handlers.postHandler.updatePost())
		r.Patch("/posts/update/{postID}", handlers.postHandler.updatePost())
		r.Get("/posts/{postID}", handlers.postHandler.getPost())
		r.Delete("/posts/{postID}", handlers.postHandler.deletePost())
	})

	// Admin pages and their assets
	indexPage := filepath.Join(staticDir, "index.html")
	editPage := filepath.Join(staticDir, "edit.html")
	r.Get("/posts", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, indexPage)
	})
	r.Get("/posts/edit/{postID}", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, editPage)
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/posts", http.StatusFound)
	})
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	// The disk backend serves stored images straight off its root; S3 keys
	// resolve to bucket URLs and need no local route.
	if disk, ok := assets.(*storage.Disk); ok {
		r.Handle("/storage/*", http.StripPrefix("/storage/", http.FileServer(http.Dir(disk.Root()))))
	}
}
