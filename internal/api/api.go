package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sliink/meter/internal/api/docs"
	"github.com/sliink/meter/internal/core"
	"github.com/sliink/meter/internal/model"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// API is the read-only REST API of a running agent
type API struct {
	agent    *core.Agent
	gatherer prometheus.Gatherer
	router   *gin.Engine
	server   *http.Server
	port     int
	host     string
}

// NewAPI creates a new API instance. gatherer may be nil when no
// prometheus output is configured.
// @title           Meter API
// @version         1.0
// @description     Read-only API over a running measurement agent

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /
func NewAPI(agent *core.Agent, gatherer prometheus.Gatherer, host string, port int) *API {
	docs.SwaggerInfo.Host = fmt.Sprintf("%s:%d", host, port)

	api := &API{
		agent:    agent,
		gatherer: gatherer,
		router:   gin.Default(),
		port:     port,
		host:     host,
	}
	api.setupRoutes()
	return api
}

// Handler returns the HTTP handler serving the API
func (a *API) Handler() http.Handler {
	return a.router
}

func (a *API) setupRoutes() {
	a.router.GET("/health", a.healthCheck)
	a.router.GET("/status", a.getStatus)
	a.router.GET("/plugins", a.getPlugins)
	a.router.GET("/pipeline", a.getPipeline)
	a.router.GET("/metrics", a.getMetrics)
	a.router.GET("/buffers", a.getBuffers)

	if a.gatherer != nil {
		a.router.GET("/prometheus", gin.WrapH(promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{})))
	} else {
		a.router.GET("/prometheus", func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"error": "prometheus output is not enabled"})
		})
	}

	a.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// Start starts the API server and blocks until it stops
func (a *API) Start() error {
	a.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.host, a.port),
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return a.server.ListenAndServe()
}

// Stop stops the API server
func (a *API) Stop(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// healthCheck handles GET /health
// @Summary      Health check
// @Description  Get the aggregated status of the agent components and plugins
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (a *API) healthCheck(c *gin.Context) {
	health := a.agent.Health().GetHealthStatus()
	code := http.StatusOK
	if health.Status == model.StatusError {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, health)
}

// getStatus handles GET /status
// @Summary      Get agent status
// @Description  Get the run id and the bootstrap phase of the agent
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /status [get]
func (a *API) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"run_id":  a.agent.RunID(),
		"phase":   a.agent.Phase(),
		"status":  a.agent.GetStatus(),
		"plugins": a.agent.Plugins().Len(),
		"metrics": a.agent.Metrics().Len(),
	})
}

// getPlugins handles GET /plugins
// @Summary      Get plugins
// @Description  Get the plugins of the agent
// @Tags         plugins
// @Produce      json
// @Success      200  {array}  map[string]interface{}
// @Router       /plugins [get]
func (a *API) getPlugins(c *gin.Context) {
	plugins := a.agent.Plugins().GetAllPlugins()
	result := make([]gin.H, len(plugins))
	for i, p := range plugins {
		result[i] = gin.H{
			"name":    p.Name(),
			"version": p.Version(),
			"status":  p.GetStatus(),
		}
	}
	c.JSON(http.StatusOK, result)
}

// getPipeline handles GET /pipeline
// @Summary      Get pipeline elements
// @Description  Get the registered sources, transforms and outputs
// @Tags         pipeline
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /pipeline [get]
func (a *API) getPipeline(c *gin.Context) {
	snap := a.agent.Pipeline().Inspect()
	c.JSON(http.StatusOK, gin.H{
		"sources":    elementNames(snap.Sources()),
		"transforms": elementNames(snap.Transforms()),
		"outputs":    elementNames(snap.Outputs()),
	})
}

func elementNames[T model.Named](names []T) []string {
	result := make([]string, len(names))
	for i, n := range names {
		result[i] = n.Element().String()
	}
	return result
}

// getMetrics handles GET /metrics
// @Summary      Get metrics
// @Description  Get the definition of every registered metric
// @Tags         pipeline
// @Produce      json
// @Success      200  {array}  map[string]interface{}
// @Router       /metrics [get]
func (a *API) getMetrics(c *gin.Context) {
	metrics := a.agent.Metrics().All()
	result := make([]gin.H, len(metrics))
	for i, m := range metrics {
		result[i] = gin.H{
			"name":        m.Name,
			"description": m.Description,
			"unit":        m.Unit.String(),
			"type":        m.ValueType.String(),
		}
	}
	c.JSON(http.StatusOK, result)
}

// getBuffers handles GET /buffers
// @Summary      Get output buffers
// @Description  Get the queue of every output
// @Tags         pipeline
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /buffers [get]
func (a *API) getBuffers(c *gin.Context) {
	c.JSON(http.StatusOK, a.agent.Pipeline().Buffers().GetBufferStatus())
}
