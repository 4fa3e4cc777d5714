package api

import (
	"github.com/postsadmin/backend/database"
	"github.com/postsadmin/backend/storage"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, assets storage.Store) *routeHandlers {
	return &routeHandlers{
		postHandler: newPostHandler(database.PostRepo(), assets),
	}
}
