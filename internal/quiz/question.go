package quiz

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// OptionCount is the number of options every well-formed question carries.
const OptionCount = 4

// Labels are the fixed option identifiers in canonical order.
var Labels = [OptionCount]string{"A", "B", "C", "D"}

// Question is one multiple-choice item as produced by the parser.
// Options keep the full source line including the "X)" marker, in the
// order they appeared.
type Question struct {
	Text         string   `json:"question"`
	Options      []string `json:"options"`
	CorrectLabel string   `json:"correct_answer"`
}

func (q Question) clone() Question {
	q.Options = append([]string(nil), q.Options...)
	return q
}

// Validate reports every missing piece of the question. The returned error
// is a *MalformedQuestionError or nil.
func (q Question) Validate() error {
	c := &issueCollector{}
	if strings.TrimSpace(q.Text) == "" {
		c.add("question", "is required")
	}
	if len(q.Options) != OptionCount {
		c.add("options", fmt.Sprintf("expected %d options, got %d", OptionCount, len(q.Options)))
	}
	for i, opt := range q.Options {
		field := fmt.Sprintf("options[%d]", i)
		if OptionLabel(opt) == "" {
			c.add(field, "missing A)-D) marker")
			continue
		}
		if OptionText(opt) == "" {
			c.add(field, "is empty")
		}
	}
	if strings.TrimSpace(q.CorrectLabel) == "" {
		c.add("correct_answer", "is required")
	}
	return c.result()
}

// DisplayOptions returns the option texts without their markers.
func (q Question) DisplayOptions() []string {
	out := make([]string, len(q.Options))
	for i, opt := range q.Options {
		out[i] = OptionText(opt)
	}
	return out
}

// OptionByLabel returns the display text of the first option carrying label.
func (q Question) OptionByLabel(label string) (string, bool) {
	normalized, ok := NormalizeLabel(label)
	if !ok {
		return "", false
	}
	for _, opt := range q.Options {
		if OptionLabel(opt) == normalized {
			return OptionText(opt), true
		}
	}
	return "", false
}

// CorrectOption resolves CorrectLabel to the display text of the matching option.
func (q Question) CorrectOption() (string, error) {
	if _, ok := NormalizeLabel(q.CorrectLabel); !ok {
		return "", fmt.Errorf("%w: %q is not a label", ErrUnresolvedLabel, q.CorrectLabel)
	}
	text, ok := q.OptionByLabel(q.CorrectLabel)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnresolvedLabel, q.CorrectLabel)
	}
	return text, nil
}

// Format renders the question in the line grammar the parser reads.
func (q Question) Format() string {
	var sb strings.Builder
	sb.WriteString("Q: " + q.Text + "\n")
	for _, opt := range q.Options {
		sb.WriteString(opt + "\n")
	}
	sb.WriteString("Correct Answer: " + q.CorrectLabel + "\n")
	return sb.String()
}

// OptionLabel returns the label of an option line ("B) Paris" -> "B"),
// or "" when the line has no marker.
func OptionLabel(option string) string {
	for _, label := range Labels {
		if strings.HasPrefix(option, label+")") {
			return label
		}
	}
	return ""
}

// OptionText strips the "X)" marker and surrounding spaces from an option line.
// Lines without a marker are returned trimmed.
func OptionText(option string) string {
	if label := OptionLabel(option); label != "" {
		return strings.TrimSpace(option[len(label)+1:])
	}
	return strings.TrimSpace(option)
}

// NormalizeLabel maps the loose forms generators emit for a label
// ("B", "b", "B)", "(B)", "B. Paris", "B) Paris") onto one of Labels.
func NormalizeLabel(raw string) (string, bool) {
	s := strings.TrimLeft(strings.TrimSpace(raw), "([")
	if s == "" {
		return "", false
	}
	label := strings.ToUpper(s[:1])
	if next, _ := utf8.DecodeRuneInString(s[1:]); next != utf8.RuneError {
		if unicode.IsLetter(next) || unicode.IsDigit(next) {
			return "", false
		}
	}
	for _, l := range Labels {
		if l == label {
			return l, true
		}
	}
	return "", false
}

// Filter splits parsed questions into well-formed ones and the reasons the
// others were rejected. Order of the kept questions is preserved.
func Filter(questions []Question) ([]Question, []*MalformedQuestionError) {
	var (
		valid     []Question
		malformed []*MalformedQuestionError
	)
	for i, q := range questions {
		err := q.Validate()
		if err == nil {
			valid = append(valid, q.clone())
			continue
		}
		var mqe *MalformedQuestionError
		if errors.As(err, &mqe) {
			mqe.Index = i
			malformed = append(malformed, mqe)
		}
	}
	return valid, malformed
}
