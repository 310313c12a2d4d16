package httptransport

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"

	"todo-server-go/internal/platform/config"
	"todo-server-go/internal/platform/logging"
)

// Options configures the HTTP router builder.
type Options struct {
	Config *config.Config
	Logger *logging.Logger
}

// Router bundles the gin engine and its top level groups.
type Router struct {
	Engine *gin.Engine
	API    *gin.RouterGroup
	Web    *gin.RouterGroup
}

// Build constructs a gin engine pre-configured with recovery, request
// logging, request ids, CORS, static assets and the HTML templates.
func Build(opts Options) (*Router, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("http router requires config")
	}
	if opts.Logger == nil {
		return nil, fmt.Errorf("http router requires logger")
	}
	cfg := opts.Config

	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestID())
	engine.Use(loggingMiddleware(opts.Logger))

	engine.SetTrustedProxies(nil)

	engine.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"X-Internal-Token",
			"X-Request-Id",
		},
		ExposeHeaders:    []string{"Content-Length", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.Web.Enabled {
		if cfg.Web.StaticDir != "" {
			if _, err := os.Stat(cfg.Web.StaticDir); err == nil {
				engine.Use(static.Serve("/static", static.LocalFile(cfg.Web.StaticDir, false)))
			}
		}
		if cfg.Web.TemplateGlob != "" {
			engine.LoadHTMLGlob(cfg.Web.TemplateGlob)
		}
	}

	return &Router{
		Engine: engine,
		API:    engine.Group("/api"),
		Web:    engine.Group("/"),
	}, nil
}

func loggingMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		logger.InfoTag("HTTP", "%s %s -> %d (%s)",
			c.Request.Method,
			c.Request.URL.Path,
			status,
			duration,
		)
	}
}
