package transcript

import (
	"regexp"
	"strconv"
	"strings"
)

// Cue is a single caption entry with timing in seconds.
type Cue struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

var (
	timestampRe = regexp.MustCompile(`((?:\d{2,}:)?\d{2}:\d{2}[.,]\d{3})\s*-->\s*((?:\d{2,}:)?\d{2}:\d{2}[.,]\d{3})`)
	tagRe       = regexp.MustCompile(`<[^>]+>`)
)

// ParseVTT parses WebVTT content into cues. NOTE, STYLE and REGION blocks
// are skipped and inline markup such as <c> or <00:00:01.000> is stripped.
func ParseVTT(content string) []Cue {
	return parseCues(content, true)
}

// ParseSRT parses SubRip content into cues.
func ParseSRT(content string) []Cue {
	return parseCues(content, false)
}

func parseCues(content string, vtt bool) []Cue {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	var cues []Cue
	var current *Cue
	skipBlock := false

	flush := func() {
		if current != nil && current.Text != "" {
			cues = append(cues, *current)
		}
		current = nil
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)

		if line == "" {
			flush()
			skipBlock = false
			continue
		}
		if skipBlock {
			continue
		}
		if vtt && current == nil {
			if strings.HasPrefix(line, "WEBVTT") {
				continue
			}
			if strings.HasPrefix(line, "NOTE") || line == "STYLE" || line == "REGION" {
				skipBlock = true
				continue
			}
		}

		if m := timestampRe.FindStringSubmatch(line); len(m) == 3 {
			flush()
			current = &Cue{
				Index: len(cues) + 1,
				Start: parseTimestamp(m[1]),
				End:   parseTimestamp(m[2]),
			}
			continue
		}

		// Cue identifiers (SRT sequence numbers, VTT ids) precede the timing line.
		if current == nil {
			continue
		}

		text := strings.TrimSpace(tagRe.ReplaceAllString(line, ""))
		if text == "" {
			continue
		}
		if current.Text != "" {
			current.Text += "\n"
		}
		current.Text += text
	}
	flush()

	return cues
}

// Text joins cue text with newlines, dropping consecutive duplicate lines
// that rolling auto-captions repeat across cues.
func Text(cues []Cue) string {
	var lines []string
	for _, cue := range cues {
		for _, line := range strings.Split(cue.Text, "\n") {
			if len(lines) > 0 && lines[len(lines)-1] == line {
				continue
			}
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func parseTimestamp(ts string) float64 {
	ts = strings.Replace(ts, ",", ".", 1)
	parts := strings.Split(ts, ":")
	var h, m int
	var s float64
	switch len(parts) {
	case 3:
		h, _ = strconv.Atoi(parts[0])
		m, _ = strconv.Atoi(parts[1])
		s, _ = strconv.ParseFloat(parts[2], 64)
	case 2:
		m, _ = strconv.Atoi(parts[0])
		s, _ = strconv.ParseFloat(parts[1], 64)
	}
	return float64(h*3600+m*60) + s
}
