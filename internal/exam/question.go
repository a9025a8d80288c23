package exam

// QuestionType is the closed set of question formats the backend serves.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeTrueFalse      QuestionType = "true_false"
	TypeTheory         QuestionType = "theory"
	TypeShortAnswer    QuestionType = "short_answer"
)

// IsChoice reports whether answers are picked from Options.
func (t QuestionType) IsChoice() bool {
	return t == TypeMultipleChoice || t == TypeTrueFalse
}

// Question is a single exam item as delivered by the QuestionSource.
// Correctness is never stored here; the session keeps it in a side table.
type Question struct {
	ID      string
	Type    QuestionType
	Content string // may contain delimited math segments, passed through untouched
	Image   string // optional image reference
	Options []string
	Answer  string // authoritative answer, compared by exact string equality
}

// BlockType tags a narration content block.
type BlockType string

const (
	BlockText  BlockType = "text"
	BlockImage BlockType = "image"
	BlockVideo BlockType = "video"
)

// NarrationBlock is one piece of a question's explanation.
type NarrationBlock struct {
	Type  BlockType `json:"type"`
	Value string    `json:"value"`
}

// NoNarrationText is shown when neither the backend nor the explainer could
// produce an explanation.
const NoNarrationText = "No narration available for this question."

// PlaceholderNarration returns the single-block fallback narration.
func PlaceholderNarration() []NarrationBlock {
	return []NarrationBlock{{Type: BlockText, Value: NoNarrationText}}
}
