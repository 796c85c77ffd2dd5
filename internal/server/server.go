package server

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mdouchement/evidence/internal/caselookup"
	"github.com/mdouchement/evidence/internal/database"
	"github.com/mdouchement/evidence/internal/metrics"
	"github.com/mdouchement/evidence/internal/registry"
	"github.com/mdouchement/evidence/internal/server/middlewares"
)

// An IOC is an Iversion Of Control pattern used to init the server package.
type IOC struct {
	Version  string
	Database database.Client
	// Cases resolves the titles of the cases. Nil means a standalone registry.
	Cases           caselookup.Lookup
	StrictLifecycle bool
	// Metrics are exposed on /metrics when set.
	Metrics *metrics.Prometheus
}

// EchoEngine instantiates the wep server.
func EchoEngine(ctrl IOC) *echo.Echo {
	engine := echo.New()
	engine.Use(middleware.Recover())
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))
	engine.Use(middleware.Gzip())

	engine.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${status}] ${method} ${uri} (${bytes_in}) ${latency_human}\n",
	}))
	engine.Binder = middlewares.NewBinder()
	// Error handler
	engine.HTTPErrorHandler = middlewares.HTTPErrorHandler

	engine.Pre(middleware.Rewrite(map[string]string{
		"/": "/version",
	}))

	////////////
	// Router //
	////////////

	options := registry.Options{
		StrictLifecycle: ctrl.StrictLifecycle,
	}
	if ctrl.Metrics != nil {
		options.Metrics = ctrl.Metrics
	}

	router := engine.Group("")

	// generic handlers
	//
	router.GET("/version", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"version": ctrl.Version,
		})
	})

	if ctrl.Metrics != nil {
		router.GET("/metrics", echo.WrapHandler(ctrl.Metrics.Handler()))
	}

	//
	// evidence handlers
	//
	evidence := &evidence{
		registry: registry.New(ctrl.Database, ctrl.Cases, options),
	}
	router.POST("/evidences", evidence.Create)
	router.GET("/evidences", evidence.List)
	router.GET("/evidences/:id", evidence.Show)
	router.PUT("/evidences/:id", evidence.Update)
	router.DELETE("/evidences/:id", evidence.Delete)
	router.GET("/evidences/:id/resolve", evidence.Resolve)
	router.GET("/status", evidence.Status)

	//
	// case handlers
	//
	kase := &kase{
		db: ctrl.Database,
	}
	router.POST("/cases", kase.Create)
	router.GET("/cases/:id", kase.Show)
	router.GET("/cases/:id/evidences", evidence.ListByCase)

	return engine
}

// PrintRoutes prints the Echo engin exposed routes.
func PrintRoutes(e *echo.Echo) {
	ignored := map[string]bool{
		"":   true,
		".":  true,
		"/*": true,
	}

	routes := e.Routes()
	sort.Slice(routes, func(i int, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})

	fmt.Println("Routes:")
	for _, route := range routes {
		if ignored[route.Path] {
			continue
		}
		fmt.Printf("%6s %s\n", route.Method, route.Path)
	}
}
