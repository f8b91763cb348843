package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// segmentSeconds is the length of each piece SplitAudio produces.
const segmentSeconds = 600

// ExtractAudioMP3 uses FFmpeg to extract the audio track as MP3 (smaller than WAV for upload)
func ExtractAudioMP3(ctx context.Context, mediaPath string) (string, error) {
	tmpFile, err := os.CreateTemp("", "quizgen-audio-*.mp3")
	if err != nil {
		return "", err
	}
	tmpFile.Close()

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner",
		"-loglevel", "error",
		"-i", mediaPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "4", // ~130kbps VBR
		"-y",
		tmpFile.Name(),
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("ffmpeg: %s: %w", strings.TrimSpace(string(output)), err)
	}
	return tmpFile.Name(), nil
}

// SplitAudio cuts audioPath into fixed-length MP3 segments inside dir and
// returns them in playback order.
func SplitAudio(ctx context.Context, audioPath, dir string) ([]string, error) {
	pattern := filepath.Join(dir, "segment_%03d.mp3")
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-i", audioPath,
		"-f", "segment",
		"-segment_time", fmt.Sprint(segmentSeconds),
		"-c:a", "libmp3lame",
		"-q:a", "4",
		"-y",
		pattern,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg split: %s: %w", strings.TrimSpace(string(output)), err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var segments []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".mp3") {
			segments = append(segments, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(segments)
	if len(segments) == 0 {
		return nil, fmt.Errorf("no audio segments generated")
	}
	return segments, nil
}
