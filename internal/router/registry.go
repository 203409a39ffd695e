package router

import "github.com/gin-gonic/gin"

// Module registers its routes on the group it is mounted under.
type Module interface {
	Register(rg *gin.RouterGroup)
}

// Registry collects modules and mounts them: API modules under /api behind
// the shared API middleware, site modules on the engine root.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	Site        *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
	site        []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api"), Site: engine.Group("/")}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// AddSite registers a module serving public, non-API routes.
func (r *Registry) AddSite(mod Module) {
	r.site = append(r.site, mod)
}

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
	for _, m := range r.site {
		m.Register(r.Site)
	}
}
