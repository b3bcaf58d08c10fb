package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	httpmw "github.com/callsight-io/callsight/internal/infrastructure/http/middleware"
	"github.com/callsight-io/callsight/internal/infrastructure/metrics"
	"github.com/callsight-io/callsight/pkg/config"
	pkgjwt "github.com/callsight-io/callsight/pkg/jwt"
)

// Router holds all handlers
type Router struct {
	cfg             *config.Config
	ingestHandler   *IngestHandler
	insightsHandler *InsightsHandler
	authMW          echo.MiddlewareFunc
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, ingestHandler *IngestHandler, insightsHandler *InsightsHandler, jwtManager *pkgjwt.Manager) *Router {
	return &Router{
		cfg:             cfg,
		ingestHandler:   ingestHandler,
		insightsHandler: insightsHandler,
		authMW:          httpmw.EchoAuth(jwtManager),
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check and metrics endpoints (unauthenticated)
	e.GET("/health", rt.healthCheck)
	e.GET("/metrics", metrics.Handler())

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupIngestRoutes(v1)
	rt.setupCallRoutes(v1)
	rt.setupSupervisorRoutes(v1)
}

// setupIngestRoutes configures the ingestion boundary
func (rt *Router) setupIngestRoutes(g *echo.Group) {
	ingestGroup := g.Group("/ingest", httpmw.IngestAuth(rt.cfg.Ingest.Token))

	ingestGroup.POST("/utterances", rt.ingestHandler.PostUtterances)
}

// setupCallRoutes configures per-call read routes (agent assist)
func (rt *Router) setupCallRoutes(g *echo.Group) {
	callGroup := g.Group("/calls", rt.authMW)

	callGroup.GET("/:call_id/context", rt.insightsHandler.GetCallContext)
	callGroup.GET("/:call_id/compliance", rt.insightsHandler.CheckCompliance)
	callGroup.GET("/:call_id/escalation", rt.insightsHandler.IdentifyEscalation)
	callGroup.POST("/:call_id/aggregate", rt.insightsHandler.AggregateCall,
		httpmw.RequireRole(pkgjwt.RoleSupervisor))
}

// setupSupervisorRoutes configures supervisor monitoring routes
func (rt *Router) setupSupervisorRoutes(g *echo.Group) {
	g.POST("/escalations/batch", rt.insightsHandler.IdentifyEscalationBatch,
		rt.authMW, httpmw.RequireRole(pkgjwt.RoleSupervisor))

	agentGroup := g.Group("/agents", rt.authMW, httpmw.RequireRole(pkgjwt.RoleSupervisor))
	agentGroup.GET("/:agent_id/performance", rt.insightsHandler.GetAgentPerformance)

	statsGroup := g.Group("/statistics", rt.authMW, httpmw.RequireRole(pkgjwt.RoleSupervisor))
	statsGroup.GET("/daily", rt.insightsHandler.GetDailyStatistics)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
