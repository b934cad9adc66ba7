package videos

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/interviewlens/genuinity/internal/config"
	"github.com/stretchr/testify/assert"
)

func setupVideoDir(t *testing.T, interviewID string, names ...string) string {
	t.Helper()
	baseDir := t.TempDir()
	folder := filepath.Join(baseDir, interviewID)
	if err := os.MkdirAll(folder, 0o750); err != nil {
		t.Fatalf("failed to create interview folder: %v", err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(folder, name), []byte("video-bytes"), 0o600); err != nil {
			t.Fatalf("failed to create video file: %v", err)
		}
	}

	return baseDir
}

func TestLocate(t *testing.T) {
	config.Config.Video.Location = setupVideoDir(t, "INT123", "v1.mp4", "v2.MOV", "v3.avi", "notes.txt")
	config.Config.Video.Extensions = []string{".mp4", ".avi", ".mov", ".mkv", ".flv", ".wmv"}

	candidates, err := Locate("INT123")
	assert.NoError(t, err)
	assert.Len(t, candidates, 3)
	for _, candidate := range candidates {
		assert.Equal(t, "INT123", candidate.InterviewID)
		assert.NotEqual(t, "notes.txt", candidate.Name)
		assert.FileExists(t, candidate.Path)
		assert.Equal(t, int64(len("video-bytes")), candidate.Size)
	}
}

func TestLocate_MissingFolder(t *testing.T) {
	config.Config.Video.Location = t.TempDir()

	candidates, err := Locate("NOSUCH")
	assert.ErrorIs(t, err, ErrInterviewNotFound)
	assert.Nil(t, candidates)
}

func TestLocate_EmptyFolder(t *testing.T) {
	// An existing folder without eligible files is not an error,
	// callers must be able to tell it apart from a missing interview
	config.Config.Video.Location = setupVideoDir(t, "INT456")
	config.Config.Video.Extensions = []string{".mp4"}

	candidates, err := Locate("INT456")
	assert.NoError(t, err)
	assert.NotNil(t, candidates)
	assert.Empty(t, candidates)
}

func TestLocate_SkipsSubdirectories(t *testing.T) {
	config.Config.Video.Location = setupVideoDir(t, "INT789", "v1.mp4")
	config.Config.Video.Extensions = []string{".mp4"}
	if err := os.MkdirAll(filepath.Join(config.Config.Video.Location, "INT789", "nested.mp4"), 0o750); err != nil {
		t.Fatalf("failed to create nested dir: %v", err)
	}

	candidates, err := Locate("INT789")
	assert.NoError(t, err)
	assert.Len(t, candidates, 1)
	assert.Equal(t, "v1.mp4", candidates[0].Name)
}
