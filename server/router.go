package server

import (
	"log"

	"github.com/gin-gonic/gin"
)

// Router manages the HTTP server and its controllers
type Router struct {
	addr        string
	baseURL     string
	controllers []Controller
}

// Config holds configuration settings for creating a new Router
type Config struct {
	Addr        string // Address to listen on
	BaseURL     string // Base URL for API routes
	Controllers []Controller
}

// NewRouter creates a new Router with the given configuration
func NewRouter(config Config) *Router {
	return &Router{
		addr:        config.Addr,
		baseURL:     config.BaseURL,
		controllers: config.Controllers,
	}
}

// Handler returns the gin.Engine serving all routes under
// <baseURL>/v1
func (r *Router) Handler() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	api := router.Group(r.baseURL)
	{
		v1 := api.Group("/v1")
		for _, c := range r.controllers {
			c.Register(v1)
		}
	}
	return router
}

// Run starts the HTTP server
func (r *Router) Run() error {
	log.Printf("[APP] [INFO] listening on %v", r.addr)
	return r.Handler().Run(r.addr)
}
