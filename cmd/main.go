package main

import (
	"github.com/interviewlens/genuinity/api"
	"github.com/interviewlens/genuinity/api/interview"
	"github.com/interviewlens/genuinity/internal/analysis"
	"github.com/interviewlens/genuinity/internal/config"
	"github.com/interviewlens/genuinity/internal/report"
	"github.com/interviewlens/genuinity/internal/reportcache"
	"github.com/interviewlens/genuinity/internal/scorer"
	"github.com/interviewlens/genuinity/pkg/request"
	log "github.com/sirupsen/logrus"
)

// init is run before main, it sets up configuration and other required things
func init() {
	log.Info("(1/4) Loading configuration")

	// Load configuration
	conf, err := config.NewConfig()
	if err != nil {
		log.Panicf("configuration loading failed, reason: %v", err)
	}
	config.Config = *conf

	// Initialise HTTP client for the external scoring service
	client, err := request.InitialiseClient()
	if err != nil {
		log.Panicf("http client init failed, reason: %v", err)
	}
	request.Client = client

	// Initialise the last-report cache
	reportCache, err := reportcache.InitialiseReportCache()
	if err != nil {
		log.Panicf("report cache init failed, reason: %v", err)
	}
	reportcache.ReportCache = reportCache

	// Initialise the report renderer
	renderer, err := report.NewPDFRenderer(conf.Report.Location, conf.Report.Company)
	if err != nil {
		log.Panicf("report renderer init failed, reason: %v", err)
	}

	// Wire the orchestration runner into the API handlers
	interview.Analyzer = analysis.NewRunner(scorer.NewClient(), renderer)
}

// main starts the web server
func main() {
	srv := api.Setup()

	// Start the server
	log.Info("(4/4) Starting web server")

	if config.Config.App.ServerCert != "" && config.Config.App.ServerKey != "" {
		log.Infof("Web server is ready to receive connections at https://%s:%d", config.Config.App.Host, config.Config.App.Port)
		log.Fatal(srv.ListenAndServeTLS(config.Config.App.ServerCert, config.Config.App.ServerKey))
	}

	log.Infof("Web server is ready to receive connections at http://%s:%d", config.Config.App.Host, config.Config.App.Port)
	log.Fatal(srv.ListenAndServe())
}
