// Package reportcache remembers the most recently generated report per
// interview id, so download requests can be served without re-running the
// analysis. The mapping lives in process memory only and is cleared on
// restart.
package reportcache

import (
	"github.com/dgraph-io/ristretto"
	"github.com/interviewlens/genuinity/internal/report"
	log "github.com/sirupsen/logrus"
)

// ReportCache is the in-memory storage holding the latest report artifact per interview id
var ReportCache *ristretto.Cache

// InitialiseReportCache creates a cache manager that stores keys and values in memory
func InitialiseReportCache() (*ristretto.Cache, error) {
	log.Debug("creating report cache")
	reportCache, err := ristretto.NewCache(
		&ristretto.Config{
			// Maximum number of items in cache
			// A recommended number is expected maximum times 10
			// so 10,000 interviews * 10 = 100,000
			NumCounters: 1e5,
			// Maximum size of cache
			// Items are small artifact records, so count them rather
			// than weigh them, at a cost of 1 each.
			MaxCost:     10000,
			BufferItems: 64,
		},
	)
	if err != nil {
		log.Errorf("failed to create report cache, reason=%v", err)

		return nil, err
	}
	log.Debug("report cache created")

	return reportCache, nil
}

// Latest returns the most recently stored report artifact for an interview id
var Latest = func(interviewID string) (report.Artifact, bool) {
	log.Debugf("get latest report for interview=%s", interviewID)
	cachedItem, exists := ReportCache.Get(interviewID)
	var artifact report.Artifact
	if exists {
		// the storage is unaware of cached types, so if an item is found
		// we must assert it is the expected type (report.Artifact)
		artifact = cachedItem.(report.Artifact)
	}
	log.Debugf("report cache response, exists=%t, artifact=%v", exists, artifact)

	return artifact, exists
}

// Store replaces the cached artifact for the interview id, last writer wins.
// Wait flushes the set buffer so the artifact is retrievable as soon as the
// analysis run that produced it returns.
var Store = func(artifact report.Artifact) {
	log.Debugf("store report artifact %v to cache", artifact)
	ReportCache.Set(artifact.InterviewID, artifact, 1)
	ReportCache.Wait()
	log.Debugf("stored report artifact for interview=%s", artifact.InterviewID)
}
