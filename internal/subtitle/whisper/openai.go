package whisper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/video-quiz/backend/internal/ffmpeg"
	"github.com/video-quiz/backend/internal/llm"
	"github.com/video-quiz/backend/internal/logger"
)

const (
	defaultBaseURL    = "https://api.openai.com/v1"
	defaultModel      = "whisper-1"
	maxUploadFileSize = 25 * 1024 * 1024 // 25MB limit
)

// Client transcribes local media through the OpenAI audio transcription API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient llm.HTTPDoer
	log        *logger.Logger
}

func NewClient(apiKey string, opts llm.Options, log *logger.Logger) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OpenAI API key not configured")
	}
	if log == nil {
		log = logger.Nop()
	}
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: opts.HTTPClient,
		log:        log.With("component", "whisper"),
	}
	if opts.BaseURL != "" {
		c.baseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.Model != "" {
		c.model = opts.Model
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 10 * time.Minute}
	}
	return c, nil
}

func (c *Client) Name() string {
	return "openai"
}

// Transcribe extracts the audio of mediaPath and returns its plain-text
// transcript. Audio over the upload limit is sent in consecutive segments
// whose transcripts are joined with newlines.
func (c *Client) Transcribe(ctx context.Context, mediaPath, language string) (string, error) {
	media, err := ffmpeg.Probe(ctx, mediaPath)
	if err != nil {
		return "", err
	}
	if !media.HasAudio {
		return "", fmt.Errorf("%s: %w", filepath.Base(mediaPath), ffmpeg.ErrNoAudio)
	}
	if language == "" {
		language = languageCode(media.Language)
	}
	c.log.Debug("probed media", "media", filepath.Base(mediaPath), "duration", media.Duration, "codec", media.AudioCodec, "language", language)

	audioPath, err := ffmpeg.ExtractAudioMP3(ctx, mediaPath)
	if err != nil {
		return "", fmt.Errorf("extract audio: %w", err)
	}
	defer os.Remove(audioPath)

	info, err := os.Stat(audioPath)
	if err != nil {
		return "", err
	}
	if info.Size() <= maxUploadFileSize {
		return c.transcribeFile(ctx, audioPath, language)
	}

	dir, err := os.MkdirTemp("", "quizgen-segments-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	segments, err := ffmpeg.SplitAudio(ctx, audioPath, dir)
	if err != nil {
		return "", err
	}
	c.log.Info("transcribing in segments", "segments", len(segments), "media", filepath.Base(mediaPath))

	parts := make([]string, 0, len(segments))
	for i, seg := range segments {
		text, err := c.transcribeFile(ctx, seg, language)
		if err != nil {
			return "", fmt.Errorf("segment %d: %w", i, err)
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n"), nil
}

func (c *Client) transcribeFile(ctx context.Context, audioPath, language string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	audioFile, err := os.Open(audioPath)
	if err != nil {
		return "", err
	}
	defer audioFile.Close()

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, audioFile); err != nil {
		return "", err
	}

	_ = writer.WriteField("model", c.model)
	_ = writer.WriteField("response_format", "text")
	if language != "" && language != "auto" {
		_ = writer.WriteField("language", language)
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.log.Debug("sending transcription request", "file", filepath.Base(audioPath), "model", c.model)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("OpenAI API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return strings.TrimSpace(string(body)), nil
}

// languageCode maps the three-letter language tags containers carry to the
// two-letter codes the API accepts. Unknown tags yield "" (auto-detect).
func languageCode(tag string) string {
	switch strings.ToLower(tag) {
	case "eng":
		return "en"
	case "hin":
		return "hi"
	case "spa":
		return "es"
	case "fra", "fre":
		return "fr"
	case "deu", "ger":
		return "de"
	case "por":
		return "pt"
	case "jpn":
		return "ja"
	case "zho", "chi":
		return "zh"
	default:
		if len(tag) == 2 {
			return strings.ToLower(tag)
		}
		return ""
	}
}
