// Package videos locates candidate interview videos on the local filesystem
// and selects the subset analyzed in one run.
package videos

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/interviewlens/genuinity/internal/config"
	log "github.com/sirupsen/logrus"
)

// ErrInterviewNotFound is returned when no folder exists for an interview id
var ErrInterviewNotFound = errors.New("interview not found")

// VideoReference identifies one candidate video file of an interview
type VideoReference struct {
	InterviewID string
	Name        string
	Path        string
	Size        int64
}

// Locate lists the video files directly under the interview's folder,
// filtered by the configured extension allow-list. A missing folder is
// ErrInterviewNotFound, an existing folder without eligible files yields an
// empty slice, callers must tell the two apart.
var Locate = func(interviewID string) ([]VideoReference, error) {
	folder := filepath.Join(filepath.Clean(config.Config.Video.Location), interviewID)

	info, err := os.Stat(folder)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warningf("video folder not found, interview=%s, folder=%s", interviewID, folder)

			return nil, ErrInterviewNotFound
		}

		return nil, err
	}
	if !info.IsDir() {
		log.Warningf("video path is not a directory, interview=%s, folder=%s", interviewID, folder)

		return nil, ErrInterviewNotFound
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}

	candidates := make([]VideoReference, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !eligibleExtension(entry.Name()) {
			continue
		}
		fileInfo, err := entry.Info()
		if err != nil {
			log.Debugf("skipping unreadable entry %s, reason=%v", entry.Name(), err)

			continue
		}
		candidates = append(candidates, VideoReference{
			InterviewID: interviewID,
			Name:        entry.Name(),
			Path:        filepath.Join(folder, entry.Name()),
			Size:        fileInfo.Size(),
		})
	}
	log.Infof("found %d video files for interview=%s", len(candidates), interviewID)

	return candidates, nil
}

// eligibleExtension checks a file name against the configured allow-list
func eligibleExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range config.Config.Video.Extensions {
		if ext == allowed {
			return true
		}
	}

	return false
}
