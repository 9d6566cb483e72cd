package enrichment

import "context"

// QuestionData is one generated fill-in-the-blank exercise. Cloze carries
// the blank marker in place of the target word.
type QuestionData struct {
	Sentence    string `json:"sentence"`
	Translation string `json:"translation"`
	Cloze       string `json:"cloze"`
}

// WordData is the full generation result for a submitted word.
type WordData struct {
	Original        string         `json:"original"`
	WordTranslation string         `json:"wordTranslation"`
	Questions       []QuestionData `json:"questions"`
}

// EvaluationType classifies a free-text answer.
type EvaluationType string

// Possible evaluation classifications
const (
	EvaluationCorrect      EvaluationType = "CORRECT"
	EvaluationTypo         EvaluationType = "TYPO"
	EvaluationWrongMeaning EvaluationType = "WRONG_MEANING"
	EvaluationUnrelated    EvaluationType = "UNRELATED"
	EvaluationCloseSynonym EvaluationType = "CLOSE_SYNONYM"
)

// Evaluation is the judgment of a user's answer to a cloze question.
type Evaluation struct {
	IsCorrect bool           `json:"isCorrect"`
	Type      EvaluationType `json:"type"`
	Feedback  string         `json:"feedback"`
}

// Enricher defines the interface for language-model word enrichment.
// This interface serves as a boundary between the application core and
// external AI/LLM services; every implementation failure surfaces as one of
// the sentinel errors in errors.go.
type Enricher interface {
	// GenerateWordData creates sentence/translation/cloze content for a
	// newly submitted word.
	GenerateWordData(ctx context.Context, word string) (*WordData, error)

	// GenerateQuestion creates one additional question for an existing word.
	GenerateQuestion(ctx context.Context, word string) (*QuestionData, error)

	// EvaluateAnswer judges the user's input against the target word in the
	// context of the question's sentence.
	EvaluateAnswer(ctx context.Context, targetWord, userInput, sentence string) (*Evaluation, error)
}
