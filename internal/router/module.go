package router

import "github.com/gin-gonic/gin"

// Module is one feature area of the API. Name must be unique within a
// Registry; Register mounts the module's routes under /api.
type Module interface {
	Name() string
	Register(rg *gin.RouterGroup)
}
