package quiz

import "strings"

const (
	questionPrefix = "Q:"
	correctPrefix  = "Correct Answer:"
)

var optionMarkers = [OptionCount]string{"A)", "B)", "C)", "D)"}

type parseState int

const (
	awaitingQuestion parseState = iota
	collectingOptions
)

// draft is the question currently being assembled.
type draft struct {
	text         string
	options      []string
	correctLabel string
	hasLabel     bool
}

func (d draft) question() Question {
	return Question{
		Text:         d.text,
		Options:      d.options,
		CorrectLabel: d.correctLabel,
	}
}

// Parser is a line-oriented state machine over generated quiz text.
// It does not validate completeness; see Question.Validate and Filter.
type Parser struct {
	state     parseState
	current   draft
	questions []Question
	dropped   int
}

func NewParser() *Parser {
	return &Parser{state: awaitingQuestion}
}

// Feed consumes one line of input.
func (p *Parser) Feed(line string) {
	line = strings.TrimSpace(line)

	if strings.HasPrefix(line, questionPrefix) {
		p.startQuestion(strings.TrimSpace(line[len(questionPrefix):]))
		return
	}
	if p.state != collectingOptions {
		return
	}

	switch {
	case hasOptionMarker(line):
		p.current.options = append(p.current.options, line)
	case strings.HasPrefix(line, correctPrefix):
		_, after, _ := strings.Cut(line, ":")
		p.current.correctLabel = strings.TrimSpace(after)
		p.current.hasLabel = true
	}
}

// startQuestion finalizes the current draft if it reached its answer line,
// otherwise drops it, then opens a new draft.
func (p *Parser) startQuestion(text string) {
	if p.state == collectingOptions {
		if p.current.hasLabel {
			p.questions = append(p.questions, p.current.question())
		} else {
			p.dropped++
		}
	}
	p.current = draft{text: text}
	p.state = collectingOptions
}

// Finish appends a question still in progress, even an incomplete one, and
// returns everything parsed so far. The parser can be reused afterwards.
func (p *Parser) Finish() []Question {
	if p.state == collectingOptions {
		p.questions = append(p.questions, p.current.question())
	}
	out := p.questions
	p.questions = nil
	p.current = draft{}
	p.state = awaitingQuestion
	return out
}

// Dropped is the number of drafts discarded because a new "Q:" line arrived
// before their "Correct Answer:" line.
func (p *Parser) Dropped() int {
	return p.dropped
}

// ParseString feeds every line of raw and finishes the parse. Dropped stays
// readable afterwards.
func (p *Parser) ParseString(raw string) []Question {
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		p.Feed(line)
	}
	return p.Finish()
}

// Parse converts raw generated text into questions in input order.
func Parse(raw string) []Question {
	return NewParser().ParseString(raw)
}

func hasOptionMarker(line string) bool {
	for _, marker := range optionMarkers {
		if strings.HasPrefix(line, marker) {
			return true
		}
	}
	return false
}
