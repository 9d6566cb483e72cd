package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexiflow/lexiflow/internal/domain"
	"github.com/lexiflow/lexiflow/internal/domain/srs"
	"github.com/lexiflow/lexiflow/internal/enrichment"
	"github.com/lexiflow/lexiflow/internal/practice"
	"github.com/lexiflow/lexiflow/internal/store"
)

// scriptedEnricher answers instantly with deterministic content.
type scriptedEnricher struct {
	evaluation  enrichment.Evaluation
	generateErr error
}

func (s *scriptedEnricher) GenerateWordData(ctx context.Context, word string) (*enrichment.WordData, error) {
	if s.generateErr != nil {
		return nil, s.generateErr
	}
	return &enrichment.WordData{
		Original:        word,
		WordTranslation: "翻譯",
		Questions: []enrichment.QuestionData{
			{
				Sentence:    "A sentence with " + word + ".",
				Translation: "句子翻譯",
				Cloze:       "A sentence with " + domain.ClozeBlank + ".",
			},
		},
	}, nil
}

func (s *scriptedEnricher) GenerateQuestion(ctx context.Context, word string) (*enrichment.QuestionData, error) {
	if s.generateErr != nil {
		return nil, s.generateErr
	}
	return &enrichment.QuestionData{
		Sentence:    "Another sentence with " + word + ".",
		Translation: "句子翻譯",
		Cloze:       "Another sentence with " + domain.ClozeBlank + ".",
	}, nil
}

func (s *scriptedEnricher) EvaluateAnswer(ctx context.Context, targetWord, userInput, sentence string) (*enrichment.Evaluation, error) {
	return &s.evaluation, nil
}

type testEnv struct {
	router   chi.Router
	store    *store.Store
	queue    *enrichment.Controller
	enricher *scriptedEnricher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.New(logger)
	enricher := &scriptedEnricher{
		evaluation: enrichment.Evaluation{IsCorrect: true, Type: enrichment.EvaluationCorrect},
	}

	queue, err := enrichment.NewController(st, enricher, logger)
	require.NoError(t, err)
	st.RegisterOnChange(queue.OnStateChange)
	queue.Start()
	t.Cleanup(queue.Stop)

	session := practice.NewSession(
		st,
		practice.NewSelector(st, fixedRand{}),
		enricher,
		srs.NewDefaultService(),
		logger,
		nil,
	)

	return &testEnv{
		router: NewRouter(Deps{
			Store:    st,
			Queue:    queue,
			Enricher: enricher,
			Session:  session,
		}),
		store:    st,
		queue:    queue,
		enricher: enricher,
	}
}

// fixedRand always draws the first candidate.
type fixedRand struct{}

func (fixedRand) Float64() float64 { return 0 }
func (fixedRand) Intn(n int) int   { return 0 }

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (e *testEnv) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.queue.Drain(ctx))
}

func (e *testEnv) addWord(t *testing.T, original string) domain.Word {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/words", EnqueueWordsRequest{Words: []string{original}})
	require.Equal(t, http.StatusAccepted, rec.Code)
	e.drain(t)

	for _, w := range e.store.Words() {
		if w.Original == original {
			return w
		}
	}
	t.Fatalf("word %q not created", original)
	return domain.Word{}
}

func TestEnqueueWordsCreatesEntries(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/words", EnqueueWordsRequest{Words: []string{"alpha", "beta"}})
	require.Equal(t, http.StatusAccepted, rec.Code)

	env.drain(t)

	rec = env.do(t, http.MethodGet, "/api/words", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[WordListResponse](t, rec)
	assert.Len(t, list.Words, 2)
}

func TestEnqueueWordsValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/words", EnqueueWordsRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/words", map[string]any{"words": []string{""}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWordLifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	word := env.addWord(t, "gamma")

	rec := env.do(t, http.MethodGet, "/api/words/"+word.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[domain.Word](t, rec)
	assert.Equal(t, "gamma", got.Original)

	rec = env.do(t, http.MethodPost, "/api/words/"+word.ID.String()+"/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decodeBody[domain.Word](t, rec)
	assert.False(t, got.Enabled)

	rec = env.do(t, http.MethodDelete, "/api/words/"+word.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/words/"+word.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetWordInvalidID(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/words/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuestionGeneration(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	word := env.addWord(t, "delta")

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/api/words/%s/questions/generate", word.ID), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	updated, err := env.store.GetWord(word.ID)
	require.NoError(t, err)
	assert.Len(t, updated.Questions, 2)
}

func TestQuestionGenerationProviderDown(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	word := env.addWord(t, "epsilon")

	env.enricher.generateErr = enrichment.ErrTransientFailure
	rec := env.do(t, http.MethodPost, fmt.Sprintf("/api/words/%s/questions/generate", word.ID), nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestManualQuestionAddAndDelete(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	word := env.addWord(t, "zeta")

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/api/words/%s/questions", word.ID), AddQuestionRequest{
		Sentence:    "The zeta function.",
		Translation: "翻譯",
		Cloze:       "The " + domain.ClozeBlank + " function.",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[domain.Question](t, rec)

	// A cloze without the blank marker is rejected.
	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/words/%s/questions", word.ID), AddQuestionRequest{
		Sentence: "No marker here.",
		Cloze:    "No marker here.",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/words/%s/questions/%s", word.ID, created.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCategoryEndpoints(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	word := env.addWord(t, "eta")

	rec := env.do(t, http.MethodPost, "/api/categories", CreateCategoryRequest{Name: "verbs"})
	require.Equal(t, http.StatusCreated, rec.Code)
	category := decodeBody[domain.Category](t, rec)

	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/categories/%s/words/%s", category.ID, word.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/categories/selection", SelectCategoriesRequest{
		Selected: []string{category.ID.String()},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[CategoryListResponse](t, rec)
	assert.Equal(t, []string{category.ID.String()}, list.Selected)

	// Deleting the category falls the selection back to "all".
	rec = env.do(t, http.MethodDelete, "/api/categories/"+category.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{store.SelectionAll}, env.store.SelectedCategories())
}

func TestPracticeFlowOverHTTP(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	word := env.addWord(t, "theta")

	rec := env.do(t, http.MethodPost, "/api/practice/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	attempt := decodeBody[practice.Attempt](t, rec)
	assert.Equal(t, word.ID, attempt.Word.ID)

	rec = env.do(t, http.MethodPost, "/api/practice/hint", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	hint := decodeBody[HintResponse](t, rec)
	assert.Equal(t, "t", hint.Hint)
	assert.Equal(t, 2, hint.HintsLeft)

	rec = env.do(t, http.MethodPost, "/api/practice/answer", SubmitAnswerRequest{Input: "theta"})
	require.Equal(t, http.StatusOK, rec.Code)
	result := decodeBody[practice.SubmitResult](t, rec)
	assert.Equal(t, domain.ReviewOutcomeCorrectAfterHint, result.Outcome)

	// Completed attempt rejects further answers.
	rec = env.do(t, http.MethodPost, "/api/practice/answer", SubmitAnswerRequest{Input: "theta"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPracticeGiveUpFlow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addWord(t, "iota")

	rec := env.do(t, http.MethodPost, "/api/practice/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/practice/give-up", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decodeBody[practice.GiveUpResult](t, rec)
	assert.Equal(t, "iota", result.Answer)

	rec = env.do(t, http.MethodPost, "/api/practice/acknowledge", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPracticeNoWordsIs204(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/practice/next", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDueReviews(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.addWord(t, "kappa")

	rec := env.do(t, http.MethodGet, "/api/reviews/due", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	due := decodeBody[DueReviewsResponse](t, rec)
	assert.Len(t, due.Due, 1)
}

func TestSettingsPatch(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(t, http.MethodPatch, "/api/settings", map[string]any{"concurrency_limit": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	settings := decodeBody[domain.Settings](t, rec)
	assert.Equal(t, 3, settings.ConcurrencyLimit)

	rec = env.do(t, http.MethodPatch, "/api/settings", map[string]any{"concurrency_limit": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportExcludesCredentialsByDefault(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	key := "super-secret"
	require.NoError(t, env.store.SetSettings(domain.SettingsPatch{APIKey: &key}))

	rec := env.do(t, http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeBody[store.Snapshot](t, rec)
	require.NotNil(t, snap.Settings)
	assert.Nil(t, snap.Settings.APIKey)

	rec = env.do(t, http.MethodGet, "/api/export?include_credentials=true", nil)
	snap = decodeBody[store.Snapshot](t, rec)
	require.NotNil(t, snap.Settings.APIKey)
	assert.Equal(t, "super-secret", *snap.Settings.APIKey)
}

func TestImportPartialSettingsKeepsCredentials(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	key := "sk-existing"
	limit := 3
	require.NoError(t, env.store.SetSettings(domain.SettingsPatch{APIKey: &key, ConcurrencyLimit: &limit}))

	theme := "light"
	rec := env.do(t, http.MethodPost, "/api/import", store.Snapshot{
		SchemaVersion: store.SchemaVersion,
		Settings:      &domain.SettingsPatch{Theme: &theme},
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	settings := env.store.Settings()
	assert.Equal(t, "light", settings.Theme)
	assert.Equal(t, "sk-existing", settings.APIKey)
	assert.Equal(t, 3, settings.ConcurrencyLimit)
}

func TestImportRoundTrip(t *testing.T) {
	t.Parallel()

	source := newTestEnv(t)
	source.addWord(t, "lambda")
	snapshot := source.store.ExportSnapshot(store.ExportOptions{})

	target := newTestEnv(t)
	rec := target.do(t, http.MethodPost, "/api/import", snapshot)
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.Len(t, target.store.Words(), 1)
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
