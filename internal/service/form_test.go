package service

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"formcraft/internal/config"
	"formcraft/internal/domain"
	"formcraft/internal/logger"
	"formcraft/internal/repository"
)

// TestMain initializes the logger for all tests in this package.
func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Level: "error"}); err != nil {
		panic("Failed to initialize logger for tests: " + err.Error())
	}

	exitVal := m.Run()

	_ = logger.Sync()
	os.Exit(exitVal)
}

func testConfig() *config.Config {
	return &config.Config{Server: config.ServerConfig{RequestTimeout: time.Second}}
}

func sampleDraft() domain.FormDraft {
	return domain.FormDraft{
		Title: "Weekly quiz",
		Questions: []domain.QuestionDraft{
			{
				ID:       "q_1",
				Type:     domain.QuestionTypeCategorize,
				Title:    "Sort the food",
				Required: true,
				Options: json.RawMessage(`{"categories":["Fruit","Veg"],"items":[
					{"text":"Apple","category":"Fruit"},
					{"text":"Banana","category":"Fruit"},
					{"text":"Carrot","category":"Veg"}]}`),
			},
			{
				ID:      "q_2",
				Type:    domain.QuestionTypeCloze,
				Title:   "Fill in",
				Options: json.RawMessage(`{"text":"The [sun] rises in the [east]"}`),
			},
			{
				ID:    "3",
				Type:  domain.QuestionTypeComprehension,
				Title: "Read",
				Options: json.RawMessage(`{"passage":"Go was announced in 2009.","questions":[
					{"question":"When?","options":["2007","2009","2012","2015"],"correctAnswer":1}]}`),
			},
		},
	}
}

func TestFormService_CreateForm(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewFormService(repository.NewFormRepository(store), nil, testConfig())

	form, err := svc.CreateForm(context.Background(), sampleDraft())
	require.NoError(t, err)
	require.NotEmpty(t, form.ID)
	assert.Equal(t, "Weekly quiz", form.Title)
	require.Len(t, form.Questions, 3)
	assert.Equal(t, "1", form.Questions[0].ID)
	assert.Equal(t, "2", form.Questions[1].ID)
	assert.Equal(t, "3", form.Questions[2].ID)

	cloze, err := form.Questions[1].Cloze()
	require.NoError(t, err)
	assert.Equal(t, []string{"sun", "east"}, cloze.Blanks())

	fetched, err := svc.GetForm(context.Background(), form.ID)
	require.NoError(t, err)
	assert.Equal(t, form.Questions, fetched.Questions)
	assert.False(t, fetched.CreatedAt.IsZero())
}

func TestFormService_CreateForm_AssignsMissingQuestionIDs(t *testing.T) {
	svc := NewFormService(repository.NewFormRepository(repository.NewMemoryStore()), nil, testConfig())
	draft := domain.FormDraft{Questions: []domain.QuestionDraft{
		{Type: domain.QuestionTypeCloze, Title: "Blank", Options: json.RawMessage(`{"text":"a [b]"}`)},
	}}

	form, err := svc.CreateForm(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultFormTitle, form.Title)
	assert.NotEmpty(t, form.Questions[0].ID)
}

func TestFormService_CreateForm_InvalidDraftWritesNothing(t *testing.T) {
	repo := new(MockFormRepository)
	svc := NewFormService(repo, nil, testConfig())

	draft := sampleDraft()
	draft.Questions[0].Title = ""
	draft.Questions[2].Options = json.RawMessage(`{"passage":"","questions":[]}`)

	form, err := svc.CreateForm(context.Background(), draft)
	assert.Nil(t, form)
	require.Error(t, err)
	assert.Equal(t, domain.CodeValidation, domain.KindOf(err))

	var fields []string
	for _, f := range domain.FieldsOf(err) {
		fields = append(fields, f.Field)
	}
	assert.Contains(t, fields, "questions[0].title")
	assert.Contains(t, fields, "questions[2].options.passage")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFormService_GetForm_NotFound(t *testing.T) {
	svc := NewFormService(repository.NewFormRepository(repository.NewMemoryStore()), nil, testConfig())

	_, err := svc.GetForm(context.Background(), "missing")
	assert.True(t, domain.IsNotFound(err))
}

func TestFormService_GetForm_Timeout(t *testing.T) {
	repo := new(MockFormRepository)
	cfg := testConfig()
	cfg.Server.RequestTimeout = 10 * time.Millisecond
	svc := NewFormService(repo, nil, cfg)

	repo.On("GetByID", mock.Anything, "slow").
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)

	_, err := svc.GetForm(context.Background(), "slow")
	require.Error(t, err)
	assert.Equal(t, domain.CodeTimeout, domain.KindOf(err))
	repo.AssertExpectations(t)
}

func TestFormService_UpdateHeaderImage(t *testing.T) {
	repo := repository.NewFormRepository(repository.NewMemoryStore())
	svc := NewFormService(repo, nil, testConfig())

	form, err := svc.CreateForm(context.Background(), sampleDraft())
	require.NoError(t, err)

	updated, err := svc.UpdateHeaderImage(context.Background(), form.ID, "https://cdn.example.com/banner.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/banner.png", updated.HeaderImage)
	assert.Len(t, updated.Questions, 3)

	_, err = svc.UpdateHeaderImage(context.Background(), "missing", "x.png")
	assert.True(t, domain.IsNotFound(err))
}

func TestFormService_ReplaceHeaderImage(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewFormRepository(repository.NewMemoryStore())
	images := new(MockImageStore)
	svc := NewFormService(repo, images, testConfig())

	form, err := svc.CreateForm(ctx, sampleDraft())
	require.NoError(t, err)

	body := strings.NewReader("png bytes")
	images.On("Save", mock.Anything, "banner.png", body).Return("/uploads/01J.png", nil).Once()

	updated, err := svc.ReplaceHeaderImage(ctx, form.ID, "banner.png", body)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/01J.png", updated.HeaderImage)
	images.AssertExpectations(t)
}

func TestFormService_ReplaceHeaderImage_UnknownFormSkipsUpload(t *testing.T) {
	images := new(MockImageStore)
	svc := NewFormService(repository.NewFormRepository(repository.NewMemoryStore()), images, testConfig())

	_, err := svc.ReplaceHeaderImage(context.Background(), "missing", "banner.png", strings.NewReader("x"))
	assert.True(t, domain.IsNotFound(err))
	images.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestFormService_ReplaceHeaderImage_UploadsDisabled(t *testing.T) {
	svc := NewFormService(new(MockFormRepository), nil, testConfig())

	_, err := svc.ReplaceHeaderImage(context.Background(), "any", "banner.png", strings.NewReader("x"))
	assert.Equal(t, domain.CodeInternal, domain.KindOf(err))
}
