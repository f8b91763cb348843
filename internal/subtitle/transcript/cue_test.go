package transcript

import "testing"

const sampleVTT = `WEBVTT
Kind: captions
Language: en

NOTE generated by a captioning tool
spanning two lines

1
00:00:01.000 --> 00:00:03.500 align:start position:0%
Welcome to the <c>lecture</c>.

2
00:00:03.500 --> 00:00:06.000
Today we cover
photosynthesis.

00:01:00.250 --> 00:01:02.000
42
`

// TestParseVTT verifies cues, timings, markup stripping and skipped blocks.
func TestParseVTT(t *testing.T) {
	cues := ParseVTT(sampleVTT)
	if len(cues) != 3 {
		t.Fatalf("expected 3 cues, got %d: %+v", len(cues), cues)
	}
	if cues[0].Text != "Welcome to the lecture." || cues[0].Start != 1 || cues[0].End != 3.5 {
		t.Fatalf("unexpected first cue %+v", cues[0])
	}
	if cues[1].Text != "Today we cover\nphotosynthesis." {
		t.Fatalf("unexpected multi-line cue %q", cues[1].Text)
	}
	if cues[2].Text != "42" || cues[2].Start != 60.25 || cues[2].Index != 3 {
		t.Fatalf("unexpected numeric cue %+v", cues[2])
	}
}

// TestParseSRT verifies comma timestamps and sequence numbers.
func TestParseSRT(t *testing.T) {
	srt := "1\r\n00:00:00,500 --> 00:00:02,000\r\nHello there\r\n\r\n2\r\n00:00:02,000 --> 00:00:04,250\r\nGeneral Kenobi\r\n"
	cues := ParseSRT(srt)
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].Start != 0.5 || cues[1].End != 4.25 || cues[1].Text != "General Kenobi" {
		t.Fatalf("unexpected cues %+v", cues)
	}
}

// TestParseVTTShortTimestamps verifies MM:SS.mmm timings are accepted.
func TestParseVTTShortTimestamps(t *testing.T) {
	cues := ParseVTT("WEBVTT\n\n01:02.500 --> 01:04.000\nshort form\n")
	if len(cues) != 1 || cues[0].Start != 62.5 {
		t.Fatalf("unexpected cues %+v", cues)
	}
}

// TestText verifies newline joining and rolling-caption deduplication.
func TestText(t *testing.T) {
	cues := []Cue{
		{Text: "first line"},
		{Text: "first line\nsecond line"},
		{Text: "third line"},
	}
	if got := Text(cues); got != "first line\nsecond line\nthird line" {
		t.Fatalf("unexpected text %q", got)
	}
	if got := Text(nil); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}
