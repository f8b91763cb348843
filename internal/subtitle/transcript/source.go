package transcript

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/video-quiz/backend/internal/logger"
)

// ErrTranscriptUnavailable is returned when no transcript can be obtained for a reference.
var ErrTranscriptUnavailable = errors.New("transcript unavailable")

// Source fetches the plain-text transcript for a reference (URL, id or path).
type Source interface {
	Fetch(ctx context.Context, ref string) (string, error)
}

// Transcriber turns a local audio or video file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath, language string) (string, error)
}

var (
	captionExts = []string{".vtt", ".srt", ".txt"}
	mediaExts   = map[string]bool{
		".mp4": true, ".mkv": true, ".webm": true, ".mov": true, ".avi": true,
		".mp3": true, ".m4a": true, ".wav": true, ".ogg": true, ".flac": true,
	}
)

// FileSource resolves references against local files:
//
//   - a caption file path (.vtt, .srt, .txt) is read and flattened to text;
//   - a YouTube URL or bare video id is looked up as <dir>/<id>.vtt|.srt|.txt;
//   - a media file path is handed to the Transcriber, if one is configured.
type FileSource struct {
	Dir         string
	Transcriber Transcriber
	Language    string
	Log         *logger.Logger
}

func (s *FileSource) Fetch(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty reference", ErrTranscriptUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscriptUnavailable, err)
	}

	if id := ExtractVideoID(ref); id != "" {
		return s.fetchByID(id)
	}
	if IsVideoID(ref) && s.Dir != "" {
		if text, err := s.fetchByID(ref); err == nil {
			return text, nil
		}
	}

	ext := strings.ToLower(filepath.Ext(ref))
	switch {
	case isCaptionExt(ext):
		return readCaptionFile(ref)
	case mediaExts[ext]:
		return s.transcribe(ctx, ref)
	default:
		return "", fmt.Errorf("%w: unrecognised reference %q", ErrTranscriptUnavailable, ref)
	}
}

func (s *FileSource) fetchByID(id string) (string, error) {
	if s.Dir == "" {
		return "", fmt.Errorf("%w: no transcript directory configured for video %s", ErrTranscriptUnavailable, id)
	}
	for _, ext := range captionExts {
		path := filepath.Join(s.Dir, id+ext)
		if _, err := os.Stat(path); err == nil {
			s.logger().Debug("resolved video transcript", "video_id", id, "path", path)
			return readCaptionFile(path)
		}
	}
	return "", fmt.Errorf("%w: no captions for video %s in %s", ErrTranscriptUnavailable, id, s.Dir)
}

func (s *FileSource) transcribe(ctx context.Context, path string) (string, error) {
	if s.Transcriber == nil {
		return "", fmt.Errorf("%w: %s is a media file and no transcriber is configured", ErrTranscriptUnavailable, path)
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscriptUnavailable, err)
	}
	s.logger().Info("transcribing media", "path", path)
	text, err := s.Transcriber.Transcribe(ctx, path, s.Language)
	if err != nil {
		return "", fmt.Errorf("%w: transcribe %s: %v", ErrTranscriptUnavailable, path, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty transcription for %s", ErrTranscriptUnavailable, path)
	}
	return text, nil
}

func (s *FileSource) logger() *logger.Logger {
	if s.Log == nil {
		return logger.Nop()
	}
	return s.Log.With("component", "transcript")
}

func readCaptionFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscriptUnavailable, err)
	}
	content := string(data)

	var text string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vtt":
		text = Text(ParseVTT(content))
	case ".srt":
		text = Text(ParseSRT(content))
	default:
		text = strings.TrimSpace(content)
	}
	if text == "" {
		return "", fmt.Errorf("%w: %s has no caption text", ErrTranscriptUnavailable, path)
	}
	return text, nil
}

func isCaptionExt(ext string) bool {
	for _, e := range captionExts {
		if e == ext {
			return true
		}
	}
	return false
}
