package request

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"

	"github.com/interviewlens/genuinity/internal/config"
	log "github.com/sirupsen/logrus"
)

// Client stores a HTTP client, so that it doesn't need to be initialised on every request
var Client *http.Client

// InitialiseClient sets up an HTTP client and returns it
func InitialiseClient() (*http.Client, error) {
	caCertPool := x509.NewCertPool()
	if config.Config.Scorer.CACert != "" {
		caCert, err := os.ReadFile(config.Config.Scorer.CACert)
		if err != nil {
			log.Errorf("Reading certificate file failed: %v", err)

			return nil, err
		}
		log.Debug("Added certificate")
		caCertPool.AppendCertsFromPEM(caCert)
	} else {
		caCertPool = nil // So that default root certs are used
	}
	// Set up HTTP(S) client
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxConnsPerHost = 100
	t.MaxIdleConnsPerHost = 100
	t.TLSClientConfig = &tls.Config{
		RootCAs: caCertPool,
	}
	client := &http.Client{
		Timeout:   config.Config.Scorer.Timeout,
		Transport: t}

	return client, nil
}

// HTTPNewRequest stores http.NewRequestWithContext, which can be substituted in unit tests
var HTTPNewRequest = http.NewRequestWithContext

// MakeRequest sends one HTTP request and checks the response status.
// Each attempt is final: a failed scoring call degrades that video's record
// and is never replayed.
var MakeRequest = func(ctx context.Context, method string, url string, headers map[string]string, body []byte) (*http.Response, error) {
	request, err := HTTPNewRequest(ctx, method, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		request.Header.Set(k, v)
	}

	response, err := Client.Do(request)
	if err != nil {
		return nil, err
	}

	// Check StatusCode in case an error has happened downstream and not catched by the `err!=nil`
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		_ = response.Body.Close()

		return nil, fmt.Errorf("unexpected response status %d", response.StatusCode)
	}

	// response.Body is closed in the consumer functions
	return response, nil
}
