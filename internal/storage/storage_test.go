package storage

import (
	"testing"
)

func TestGetContentType(t *testing.T) {
	tests := []struct {
		filePath string
		wantType string
	}{
		{"audio.mp3", "audio/mpeg"},
		{"audio.m4a", "audio/mp4"},
		{"audio.wav", "audio/wav"},
		{"audio.flac", "audio/flac"},
		{"video.mp4", "video/mp4"},
		{"video.mov", "video/quicktime"},
		{"video.avi", "video/x-msvideo"},
		{"video.mkv", "video/x-matroska"},
		{"video.webm", "video/webm"},
		{"unknown.xyz", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.filePath, func(t *testing.T) {
			contentType := getContentType(tt.filePath)
			if contentType != tt.wantType {
				t.Errorf("getContentType(%q) = %q, want %q", tt.filePath, contentType, tt.wantType)
			}
		})
	}
}

func TestMediaKey(t *testing.T) {
	tests := []struct {
		assetID  string
		filename string
		want     string
	}{
		{"a1", "lecture.mp4", "media/a1/lecture.mp4"},
		{"a2", "/tmp/uploads/notes.mp3", "media/a2/notes.mp3"},
	}

	for _, tt := range tests {
		got := MediaKey(tt.assetID, tt.filename)
		if got != tt.want {
			t.Errorf("MediaKey(%q, %q) = %q, want %q", tt.assetID, tt.filename, got, tt.want)
		}
	}
}
