package routes

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"foodbot/handlers"
	"foodbot/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options carries the route settings that come from configuration.
type Options struct {
	WebhookPath string
	StaticDir   string
	ViewsDir    string
}

// RegisterShellRoutes registers the index route, static assets and the
// template engine. Templates are only loaded when the views directory has any.
func RegisterShellRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	r.GET("/", hb.IndexHandler)
	if opts.StaticDir != "" {
		r.NoRoute(staticFallback(opts.StaticDir))
	}
	if opts.ViewsDir != "" {
		pattern := filepath.Join(opts.ViewsDir, "*")
		if matches, _ := filepath.Glob(pattern); len(matches) > 0 {
			r.LoadHTMLGlob(pattern)
		}
	}
}

// staticFallback serves files from dir at the site root for any path no
// route claims. Directories are never listed.
func staticFallback(dir string) gin.HandlerFunc {
	fileServer := http.FileServer(gin.Dir(dir, false))
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+c.Request.URL.Path)))
			if info, err := os.Stat(name); err == nil && !info.IsDir() {
				fileServer.ServeHTTP(c.Writer, c.Request)
				return
			}
		}
		utils.JSONError(c, http.StatusNotFound, "Not found", c.Request.URL.Path)
	}
}

// RegisterWebhookRoutes registers the Slack outgoing-webhook endpoint.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	path := opts.WebhookPath
	if path == "" {
		path = "/slack/receive"
	}
	r.POST(path, hb.WebhookHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterMetricsRoute exposes Prometheus metrics.
func RegisterMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	RegisterShellRoutes(r, hb, opts)
	RegisterWebhookRoutes(r, hb, opts)
	RegisterHealthRoute(r, hb)
	RegisterMetricsRoute(r)
}
