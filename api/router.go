package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"     // swagger embed files
	ginSwagger "github.com/swaggo/gin-swagger" // gin-swagger middleware

	"matserver/db"
	"matserver/utils"
)

// HealthResponse is the liveness body.
type HealthResponse struct {
	Status        string  `json:"status" example:"ok"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// NewRouter builds the gin engine with every route.
func NewRouter(store *db.Store, gw Gateways) *gin.Engine {
	started := time.Now()

	router := gin.New()
	router.Use(gin.Logger())
	// Recovery middleware recovers from any panics and writes a 500 if there was one.
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware(), MetricsMiddleware())

	// --- Users ---
	router.POST("/register", func(c *gin.Context) { RegisterHandler(c, store) })
	router.POST("/login", func(c *gin.Context) { LoginHandler(c, store) })

	userGroup := router.Group("/users")
	{
		userGroup.POST("/tenants", func(c *gin.Context) { SetTenantHandler(c, store) })
		userGroup.GET("/tenants/:email", func(c *gin.Context) { GetTenantsHandler(c, store) })
		userGroup.POST("/client-credentials", func(c *gin.Context) { AddClientCredentialHandler(c, store) })
		userGroup.POST("/feedback", func(c *gin.Context) { AddFeedbackHandler(c, store) })
		userGroup.POST("/on-prem-credentials", func(c *gin.Context) { AddOnPremCredentialHandler(c, store) })

		assessmentGroup := userGroup.Group("/assessments")
		{
			assessmentGroup.POST("", func(c *gin.Context) { AddAssessmentHandler(c, store) })
			assessmentGroup.POST("/bulk", func(c *gin.Context) { AddAssessmentsBulkHandler(c, store) })
			assessmentGroup.GET("/:email", func(c *gin.Context) { GetAssessmentsHandler(c, store) })
			assessmentGroup.GET("/:email/:id", func(c *gin.Context) { GetAssessmentHandler(c, store) })
			assessmentGroup.DELETE("/:email/:id", func(c *gin.Context) { DeleteAssessmentHandler(c, store) })
		}
	}

	// --- Reports (Azure) ---
	reportGroup := router.Group("/api")
	{
		reportGroup.POST("/execute-report", func(c *gin.Context) { ExecuteReportHandler(c, gw.Reports) })
		reportGroup.GET("/report-status/:jobId", func(c *gin.Context) { ReportStatusHandler(c, gw.Jobs) })
		reportGroup.POST("/get-download-link", func(c *gin.Context) { DownloadLinkHandler(c, gw.Blobs) })
	}

	// --- Operational ---
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.APIError{Message: "Test route successful!"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{Status: "ok", UptimeSeconds: time.Since(started).Seconds()})
	})
	router.GET("/ready", func(c *gin.Context) {
		if err := store.Repository().Ping(c.Request.Context()); err != nil {
			log.Printf("WARN: Readiness check failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, utils.GatewayErrorResponse{Error: "store unavailable", Details: err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.NoRoute(func(c *gin.Context) {
		log.Printf("INFO: No route matched for %s %s", c.Request.Method, c.Request.URL.Path)
		c.JSON(http.StatusNotFound, utils.APIError{Message: "API Endpoint Not Found"})
	})

	return router
}
