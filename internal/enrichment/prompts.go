package enrichment

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/lexiflow/lexiflow/internal/domain"
)

// Built-in prompt templates. Users can override any of them through
// settings; an empty override falls back to the default.
const (
	defaultGenerateDataPrompt = `
Generate a sentence using the English word "{{.Word}}".
The sentence should be suitable for an intermediate English learner.
Return a JSON object ONLY, without markdown formatting, with the following structure:
{
  "original": "{{.Word}}",
  "sentence": "The full sentence containing the word.",
  "translation": "Traditional Chinese translation of the sentence.",
  "wordTranslation": "Traditional Chinese translation of the word '{{.Word}}'",
  "cloze": "The sentence with the word '{{.Word}}' (and its variations like plurals/tenses if applicable) replaced by '__________'."
}`

	defaultGenerateQuestionPrompt = `
Generate a NEW sentence using the English word "{{.Word}}".
The sentence should be different from common examples and suitable for an intermediate learner.
Return a JSON object ONLY, without markdown formatting:
{
  "sentence": "The full sentence containing the word.",
  "translation": "Traditional Chinese translation of the sentence.",
  "cloze": "The sentence with the word '{{.Word}}' replaced by '__________'."
}`

	defaultEvaluateAnswerPrompt = `
The target word was "{{.TargetWord}}".
The context sentence was: "{{.Sentence}}".
The user input to fill the blank was: "{{.UserInput}}".

Evaluate the user's input strictly but helpfully.
Return a JSON object ONLY, without markdown formatting:
{
  "isCorrect": boolean,
  "type": "CORRECT" | "TYPO" | "WRONG_MEANING" | "UNRELATED" | "CLOSE_SYNONYM",
  "feedback": "String in Traditional Chinese. If correct, praise briefly. If typo, point it out. If wrong meaning, explain why WITHOUT revealing the correct answer. If synonym, acknowledge it but say the target word is better here (do not explicitly state the target word)."
}`
)

// generatePromptData feeds the two generation templates.
type generatePromptData struct {
	Word string
}

// evaluatePromptData feeds the answer-evaluation template.
type evaluatePromptData struct {
	TargetWord string
	UserInput  string
	Sentence   string
}

// PromptSet holds the three parsed prompt templates used by every enricher
// implementation. Build one with NewPromptSet so user overrides from
// settings are applied consistently.
type PromptSet struct {
	generateData     *template.Template
	generateQuestion *template.Template
	evaluateAnswer   *template.Template
}

// NewPromptSet parses the built-in templates, replacing individual ones with
// user overrides when UseCustomPrompts is set. A malformed override is a
// configuration error.
func NewPromptSet(settings domain.Settings) (*PromptSet, error) {
	genData := defaultGenerateDataPrompt
	genQuestion := defaultGenerateQuestionPrompt
	evalAnswer := defaultEvaluateAnswerPrompt

	if settings.UseCustomPrompts && settings.Prompts != nil {
		if settings.Prompts.GenerateData != "" {
			genData = settings.Prompts.GenerateData
		}
		if settings.Prompts.GenerateQuestion != "" {
			genQuestion = settings.Prompts.GenerateQuestion
		}
		if settings.Prompts.EvaluateAnswer != "" {
			evalAnswer = settings.Prompts.EvaluateAnswer
		}
	}

	set := &PromptSet{}
	var err error

	if set.generateData, err = template.New("generate_data").Parse(genData); err != nil {
		return nil, fmt.Errorf("%w: failed to parse generate-data prompt: %v", ErrInvalidConfig, err)
	}
	if set.generateQuestion, err = template.New("generate_question").Parse(genQuestion); err != nil {
		return nil, fmt.Errorf("%w: failed to parse generate-question prompt: %v", ErrInvalidConfig, err)
	}
	if set.evaluateAnswer, err = template.New("evaluate_answer").Parse(evalAnswer); err != nil {
		return nil, fmt.Errorf("%w: failed to parse evaluate-answer prompt: %v", ErrInvalidConfig, err)
	}

	return set, nil
}

// GenerateDataPrompt renders the full-enrichment prompt for a word.
func (p *PromptSet) GenerateDataPrompt(word string) (string, error) {
	return render(p.generateData, generatePromptData{Word: word})
}

// GenerateQuestionPrompt renders the additional-question prompt for a word.
func (p *PromptSet) GenerateQuestionPrompt(word string) (string, error) {
	return render(p.generateQuestion, generatePromptData{Word: word})
}

// EvaluateAnswerPrompt renders the answer-judgment prompt.
func (p *PromptSet) EvaluateAnswerPrompt(targetWord, userInput, sentence string) (string, error) {
	return render(p.evaluateAnswer, evaluatePromptData{
		TargetWord: targetWord,
		UserInput:  userInput,
		Sentence:   sentence,
	})
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}
