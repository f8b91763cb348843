package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNoAudio is returned for media without an audio stream.
var ErrNoAudio = errors.New("media has no audio stream")

type probeResult struct {
	Format  probeFormat   `json:"format"`
	Streams []ProbeStream `json:"streams"`
}

type probeFormat struct {
	Filename string `json:"filename"`
	Duration string `json:"duration"`
	Size     string `json:"size"`
}

type ProbeStream struct {
	Index      int               `json:"index"`
	CodecName  string            `json:"codec_name"`
	CodecType  string            `json:"codec_type"` // video, audio, subtitle
	SampleRate string            `json:"sample_rate,omitempty"`
	Channels   int               `json:"channels,omitempty"`
	Tags       map[string]string `json:"tags,omitempty"`
}

type MediaInfo struct {
	Duration   float64 // seconds, 0 when unknown
	AudioCodec string
	Language   string // language tag of the first audio stream
	HasAudio   bool
	HasVideo   bool
	Streams    []ProbeStream
}

// Probe runs ffprobe on filePath.
func Probe(ctx context.Context, filePath string) (*MediaInfo, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", filePath, err)
	}
	return parseProbe(output)
}

func parseProbe(output []byte) (*MediaInfo, error) {
	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("decode ffprobe output: %w", err)
	}

	info := &MediaInfo{Streams: result.Streams}
	if d, err := strconv.ParseFloat(strings.TrimSpace(result.Format.Duration), 64); err == nil {
		info.Duration = d
	}

	for _, s := range result.Streams {
		switch s.CodecType {
		case "video":
			info.HasVideo = true
		case "audio":
			if !info.HasAudio {
				info.HasAudio = true
				info.AudioCodec = s.CodecName
				info.Language = s.Tags["language"]
			}
		}
	}
	return info, nil
}
