package quiz

import (
	"reflect"
	"strings"
	"testing"
)

func sampleQuestions() []Question {
	return []Question{
		{
			Text:         "What is the capital of France?",
			Options:      []string{"A) Berlin", "B) Paris", "C) Rome", "D) Madrid"},
			CorrectLabel: "B",
		},
		{
			Text:         "Which planet is known as the red planet?",
			Options:      []string{"A) Mars", "B) Venus", "C) Jupiter", "D) Mercury"},
			CorrectLabel: "A",
		},
		{
			Text:         "How many minutes are in an hour?",
			Options:      []string{"A) 30", "B) 100", "C) 24", "D) 60"},
			CorrectLabel: "D",
		},
	}
}

func formatAll(questions []Question) string {
	var sb strings.Builder
	for _, q := range questions {
		sb.WriteString(q.Format())
		sb.WriteString("\n")
	}
	return sb.String()
}

// TestParseRoundTrip verifies well-formed text yields exactly the formatted questions.
func TestParseRoundTrip(t *testing.T) {
	want := sampleQuestions()
	got := Parse(formatAll(want))
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, want)
	}
}

// TestParseTrailingQuestionWithoutAnswer verifies the last draft is kept at end of input.
func TestParseTrailingQuestionWithoutAnswer(t *testing.T) {
	raw := "Q: First?\nA) a\nB) b\nC) c\nD) d\nCorrect Answer: A\n\nQ: Second?\nA) w\nB) x\nC) y\nD) z\n"
	got := Parse(raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got))
	}
	last := got[1]
	if last.Text != "Second?" || len(last.Options) != 4 || last.CorrectLabel != "" {
		t.Fatalf("unexpected trailing question: %+v", last)
	}
}

// TestParseDropsDraftWithoutAnswerBeforeNextQuestion verifies unanswered drafts are not finalized.
func TestParseDropsDraftWithoutAnswerBeforeNextQuestion(t *testing.T) {
	raw := "Q: Lost?\nA) 1\nB) 2\nQ: Kept?\nA) a\nB) b\nC) c\nD) d\nCorrect Answer: C\n"
	p := NewParser()
	for _, line := range strings.Split(raw, "\n") {
		p.Feed(line)
	}
	got := p.Finish()
	if len(got) != 1 || got[0].Text != "Kept?" {
		t.Fatalf("expected only Kept?, got %+v", got)
	}
	if p.Dropped() != 1 {
		t.Fatalf("expected 1 dropped draft, got %d", p.Dropped())
	}
}

// TestParseStringCountsDropped verifies CRLF input is split like Parse and drops stay counted.
func TestParseStringCountsDropped(t *testing.T) {
	raw := "Q: Lost?\r\nA) 1\r\nQ: Kept?\r\nA) a\r\nB) b\r\nC) c\r\nD) d\r\nCorrect Answer: C\r\n"
	p := NewParser()
	got := p.ParseString(raw)
	if !reflect.DeepEqual(got, Parse(raw)) {
		t.Fatalf("ParseString and Parse disagree: %+v", got)
	}
	if len(got) != 1 || got[0].CorrectLabel != "C" || got[0].Options[3] != "D) d" {
		t.Fatalf("unexpected parse: %+v", got)
	}
	if p.Dropped() != 1 {
		t.Fatalf("expected 1 dropped draft, got %d", p.Dropped())
	}
}

// TestParseKeepsOptionOrder verifies options are not re-sorted by label.
func TestParseKeepsOptionOrder(t *testing.T) {
	raw := "Q: Order?\nC) third\nA) first\nD) fourth\nB) second\nCorrect Answer: A"
	got := Parse(raw)
	want := []string{"C) third", "A) first", "D) fourth", "B) second"}
	if len(got) != 1 || !reflect.DeepEqual(got[0].Options, want) {
		t.Fatalf("unexpected options: %+v", got)
	}
}

// TestParseIgnoresNoise verifies stray prose, blank lines and indentation are handled.
func TestParseIgnoresNoise(t *testing.T) {
	raw := "Sure! Here are your questions.\n\n   Q:   Spaced?  \n  A) one\nsome commentary\n  B) two\nC) three\nD) four\n  Correct Answer:   B  \nHope this helps!\r\n"
	got := Parse(raw)
	if len(got) != 1 {
		t.Fatalf("expected 1 question, got %d", len(got))
	}
	q := got[0]
	if q.Text != "Spaced?" {
		t.Fatalf("expected trimmed text, got %q", q.Text)
	}
	if q.CorrectLabel != "B" {
		t.Fatalf("expected label B, got %q", q.CorrectLabel)
	}
	if len(q.Options) != 4 || q.Options[0] != "A) one" {
		t.Fatalf("unexpected options: %+v", q.Options)
	}
}

// TestParseIgnoresOptionsBeforeFirstQuestion verifies lines before any "Q:" are skipped.
func TestParseIgnoresOptionsBeforeFirstQuestion(t *testing.T) {
	raw := "A) orphan\nCorrect Answer: A\nQ: Real?\nA) a\nB) b\nC) c\nD) d\nCorrect Answer: D"
	got := Parse(raw)
	if len(got) != 1 || len(got[0].Options) != 4 || got[0].CorrectLabel != "D" {
		t.Fatalf("unexpected parse: %+v", got)
	}
}

// TestParseCorrectAnswerAfterFirstColon verifies the label keeps text after the first colon.
func TestParseCorrectAnswerAfterFirstColon(t *testing.T) {
	got := Parse("Q: Time?\nA) 10:00\nB) 11:00\nC) 12:00\nD) 13:00\nCorrect Answer: B) 11:00")
	if len(got) != 1 || got[0].CorrectLabel != "B) 11:00" {
		t.Fatalf("unexpected label: %+v", got)
	}
	text, err := got[0].CorrectOption()
	if err != nil || text != "11:00" {
		t.Fatalf("expected 11:00, got %q (%v)", text, err)
	}
}

// TestParseEmptyInput verifies no questions come out of text without "Q:" lines.
func TestParseEmptyInput(t *testing.T) {
	if got := Parse("I cannot help with that."); len(got) != 0 {
		t.Fatalf("expected no questions, got %+v", got)
	}
	if got := Parse(""); len(got) != 0 {
		t.Fatalf("expected no questions, got %+v", got)
	}
}

// TestParserReusableAfterFinish verifies Finish resets the machine.
func TestParserReusableAfterFinish(t *testing.T) {
	p := NewParser()
	p.Feed("Q: one")
	if got := p.Finish(); len(got) != 1 {
		t.Fatalf("expected 1, got %d", len(got))
	}
	p.Feed("A) stray")
	if got := p.Finish(); len(got) != 0 {
		t.Fatalf("expected reset parser to yield nothing, got %+v", got)
	}
}
