package api

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/interviewlens/genuinity/api/interview"
	"github.com/interviewlens/genuinity/internal/config"
	log "github.com/sirupsen/logrus"
)

// healthResponse
func healthResponse(c *gin.Context) {
	// ok response to health
	c.Writer.WriteHeader(http.StatusOK)
}

// Setup configures the web server and registers the routes
func Setup() *http.Server {
	// Set up routing
	log.Info("(2/4) Registering endpoint handlers")
	if log.GetLevel() != log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if log.GetLevel() == log.DebugLevel {
		router.Use(gin.LoggerWithConfig(
			gin.LoggerConfig{
				Formatter: func(params gin.LogFormatterParams) string {
					s, _ := json.Marshal(map[string]any{
						"level":       "debug",
						"method":      params.Method,
						"path":        params.Path,
						"remote_addr": params.ClientIP,
						"status_code": params.StatusCode,
						"time":        params.TimeStamp.Format(time.RFC3339),
					})

					return string(s) + "\n"
				},

				Skip: func(c *gin.Context) bool {
					// skip logging HEAD requests to / and all requests to /health
					return (c.Request.Method == "HEAD" && strings.Trim(c.FullPath(), "/") == "") ||
						c.FullPath() == "/health"
				},
				Output: gin.DefaultWriter,
			},
		))
	}

	router.HandleMethodNotAllowed = true

	// analysis endpoints
	router.POST("/api/v1/analyze", interview.Analyze)
	router.GET("/api/v1/interviews/:interviewID/videos", interview.Candidates)
	router.GET("/api/v1/interviews/:interviewID/report", interview.DownloadReport)

	// public endpoints
	router.GET("/health", healthResponse)
	router.HEAD("/", healthResponse)

	// Configure TLS settings
	log.Info("(3/4) Configuring server")
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	srv := &http.Server{
		Addr:              config.Config.App.Host + ":" + fmt.Sprint(config.Config.App.Port),
		Handler:           router,
		TLSConfig:         cfg,
		TLSNextProto:      make(map[string]func(*http.Server, *tls.Conn, http.Handler)),
		ReadHeaderTimeout: 20 * time.Second,
		ReadTimeout:       5 * time.Minute,
		// Analysis runs can outlive any sane fixed write timeout, the
		// scorer timeout bounds them instead
		WriteTimeout: -1,
	}

	return srv
}
