package config

import (
	"fmt"
	"path"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config is a global configuration value store
var Config Map

// Map stores all different configs
type Map struct {
	App    AppConfig
	Video  VideoConfig
	Sample SampleConfig
	Scorer ScorerConfig
	Report ReportConfig
}

type AppConfig struct {
	// Hostname for this web app
	// Optional. Default value 0.0.0.0
	Host string

	// Port number for this web app
	// Optional. Default value 8080
	Port int

	// TLS server certificate for HTTPS
	// Optional. Defaults to empty
	ServerCert string

	// TLS server certificate key for HTTPS
	// Optional. Defaults to empty
	ServerKey string
}

type VideoConfig struct {
	// Base directory holding one subfolder of videos per interview id.
	// Mandatory.
	Location string

	// File extension allow-list for candidate videos, lower case with
	// leading dot.
	// Optional. Defaults to the common container formats.
	Extensions []string
}

type SampleConfig struct {
	// Number of videos selected per run when the request doesn't say.
	// Optional. Default value 2
	Size int

	// Hard upper bound on the number of videos scored in one run,
	// payloads are large and each remote call is expensive.
	// Optional. Default value 10
	Max int
}

type ScorerConfig struct {
	// URL of the external genuinity scoring endpoint.
	// Mandatory.
	URL string

	// Timeout for a single scoring request. Base64 video payloads can be
	// tens of megabytes, so this needs to be generous.
	// Optional. Default value 90s
	Timeout time.Duration

	// Upper bound on concurrent scoring requests within one run.
	// Optional. Default value 4
	MaxConcurrent int

	// TLS CA certificate for the scoring endpoint
	// Optional.
	CACert string
}

type ReportConfig struct {
	// Directory where generated PDF reports are written.
	// Optional. Default value ./reports
	Location string

	// Branding string printed in the report footer.
	// Optional.
	Company string
}

// defaultExtensions mirrors the formats the scoring service accepts
var defaultExtensions = []string{".mp4", ".avi", ".mov", ".mkv", ".flv", ".wmv"}

// NewConfig populates Map with data
func NewConfig() (*Map, error) {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetConfigType("yaml")
	if viper.IsSet("configPath") {
		configPath := viper.GetString("configPath")
		splitPath := strings.Split(strings.TrimLeft(configPath, "/"), "/")
		viper.AddConfigPath(path.Join(splitPath...))
	}

	if viper.IsSet("configFile") {
		viper.SetConfigFile(viper.GetString("configFile"))
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Infoln("No config file found, using ENVs only")
		} else {
			return nil, err
		}
	}

	requiredConfVars := []string{"video.location", "scorer.url"}
	for _, s := range requiredConfVars {
		if !viper.IsSet(s) || viper.GetString(s) == "" {
			return nil, fmt.Errorf("%s not set", s)
		}
	}

	if viper.IsSet("log.format") {
		if viper.GetString("log.format") == "json" {
			log.SetFormatter(&log.JSONFormatter{})
			log.Info("The logs format is set to JSON")
		}
	}

	if viper.IsSet("log.level") {
		stringLevel := viper.GetString("log.level")
		intLevel, err := log.ParseLevel(stringLevel)
		if err != nil {
			log.Printf("Log level '%s' not supported, setting to 'trace'", stringLevel)
			intLevel = log.TraceLevel
		}
		log.SetLevel(intLevel)
		log.Printf("Setting log level to '%s'", stringLevel)
	}

	c := &Map{}
	c.applyDefaults()
	c.appConfig()
	c.videoConfig()
	if err := c.sampleConfig(); err != nil {
		return nil, err
	}
	if err := c.scorerConfig(); err != nil {
		return nil, err
	}
	c.reportConfig()

	return c, nil
}

// applyDefaults sets default values for the web server and the analysis run
// default to host 0.0.0.0 as it will be the main way we deploy this application
func (c *Map) applyDefaults() {
	viper.SetDefault("app.host", "0.0.0.0")
	viper.SetDefault("app.port", 8080)
	viper.SetDefault("sample.size", 2)
	viper.SetDefault("sample.max", 10)
	viper.SetDefault("scorer.timeout", 90*time.Second)
	viper.SetDefault("scorer.maxconcurrent", 4)
	viper.SetDefault("report.location", "./reports")
	viper.SetDefault("report.company", "InterviewLens")
	viper.SetDefault("log.level", "info")
}

func (c *Map) appConfig() {
	c.App.Host = viper.GetString("app.host")
	c.App.Port = viper.GetInt("app.port")
	c.App.ServerCert = viper.GetString("app.servercert")
	c.App.ServerKey = viper.GetString("app.serverkey")
}

func (c *Map) videoConfig() {
	c.Video.Location = viper.GetString("video.location")
	c.Video.Extensions = defaultExtensions
	if viper.IsSet("video.extensions") {
		exts := viper.GetStringSlice("video.extensions")
		normalized := make([]string, 0, len(exts))
		for _, e := range exts {
			e = strings.ToLower(strings.TrimSpace(e))
			if e == "" {
				continue
			}
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			normalized = append(normalized, e)
		}
		if len(normalized) > 0 {
			c.Video.Extensions = normalized
		}
	}
}

func (c *Map) sampleConfig() error {
	c.Sample.Size = viper.GetInt("sample.size")
	c.Sample.Max = viper.GetInt("sample.max")
	if c.Sample.Size <= 0 {
		return fmt.Errorf("sample.size must be positive, got %d", c.Sample.Size)
	}
	if c.Sample.Max <= 0 {
		return fmt.Errorf("sample.max must be positive, got %d", c.Sample.Max)
	}

	return nil
}

func (c *Map) scorerConfig() error {
	c.Scorer.URL = viper.GetString("scorer.url")
	c.Scorer.Timeout = viper.GetDuration("scorer.timeout")
	c.Scorer.MaxConcurrent = viper.GetInt("scorer.maxconcurrent")
	c.Scorer.CACert = viper.GetString("scorer.cacert")
	if c.Scorer.Timeout <= 0 {
		return fmt.Errorf("scorer.timeout must be positive, got %v", c.Scorer.Timeout)
	}
	if c.Scorer.MaxConcurrent <= 0 {
		return fmt.Errorf("scorer.maxconcurrent must be positive, got %d", c.Scorer.MaxConcurrent)
	}

	return nil
}

func (c *Map) reportConfig() {
	c.Report.Location = viper.GetString("report.location")
	c.Report.Company = viper.GetString("report.company")
}
