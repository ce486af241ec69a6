package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formcraft/internal/config"
	"formcraft/internal/dto"
	"formcraft/internal/handler"
	"formcraft/internal/middleware"
	"formcraft/internal/repository"
	"formcraft/internal/service"
	"formcraft/internal/storage"
	"formcraft/internal/validation"
)

const formBody = `{
	"title": "Weekly quiz",
	"questions": [
		{"id": "q_1", "type": "categorize", "title": "Sort", "required": true,
		 "options": {"categories": ["Fruit", "Veg"], "items": [
			{"text": "Apple", "category": "Fruit"},
			{"text": "Carrot", "category": "Veg"}]}},
		{"id": "q_2", "type": "cloze", "title": "Fill in",
		 "options": {"text": "The [sun] rises"}}
	]
}`

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := &config.Config{Server: config.ServerConfig{RequestTimeout: time.Second}}

	store := repository.NewMemoryStore()
	formRepo := repository.NewFormRepository(store)
	images, err := storage.NewLocalImageStore(config.UploadsConfig{
		Dir:       filepath.Join(t.TempDir(), "uploads"),
		URLPrefix: "/uploads",
	})
	require.NoError(t, err)

	validator, err := validation.NewValidator()
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Use(middleware.RequestLogger())
	handler.RegisterRoutes(app, handler.Handlers{
		Forms:     handler.NewFormHandler(service.NewFormService(formRepo, images, cfg)),
		Responses: handler.NewResponseHandler(service.NewResponseService(formRepo, repository.NewResponseRepository(store), cfg)),
		Health:    handler.NewHealthHandler(config.StorageMemory, nil),
	}, middleware.NewValidationMiddleware(validator))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createForm(t *testing.T, app *fiber.App) map[string]any {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/forms", formBody)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return decode[map[string]any](t, resp)
}

func fieldsOf(errResp middleware.ErrorResponse) []string {
	var fields []string
	for _, f := range errResp.Errors {
		fields = append(fields, f.Field)
	}
	return fields
}

func TestCreateAndGetForm(t *testing.T) {
	app := setupApp(t)

	created := createForm(t, app)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, id, created["_id"])

	questions := created["questions"].([]any)
	require.Len(t, questions, 2)
	assert.Equal(t, "1", questions[0].(map[string]any)["id"])
	cloze := questions[1].(map[string]any)["options"].(map[string]any)
	assert.Equal(t, []any{"sun"}, cloze["blanks"])

	resp := doJSON(t, app, http.MethodGet, "/api/forms/"+id, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	fetched := decode[map[string]any](t, resp)
	assert.Equal(t, created["questions"], fetched["questions"])
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
}

func TestCreateForm_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		code   string
		fields []string
	}{
		{
			name:   "malformed json",
			body:   `{"title": `,
			code:   "VALIDATION_ERROR",
			fields: []string{"body"},
		},
		{
			name:   "unsupported type",
			body:   `{"questions": [{"type": "essay", "title": "Why?"}]}`,
			code:   "VALIDATION_ERROR",
			fields: []string{"questions[0].type"},
		},
		{
			name: "every bad question is reported",
			body: `{"questions": [
				{"type": "essay", "title": "Why?"},
				{"type": "cloze", "title": "", "options": {"text": "no blanks here"}},
				{"title": "Untyped"}]}`,
			code:   "VALIDATION_ERROR",
			fields: []string{"questions[0].type", "questions[1].title", "questions[2].type"},
		},
		{
			name:   "missing title and options",
			body:   `{"questions": [{"type": "comprehension", "options": {"passage": "", "questions": []}}]}`,
			code:   "VALIDATION_ERROR",
			fields: []string{"questions[0].title", "questions[0].options.passage"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupApp(t)
			resp := doJSON(t, app, http.MethodPost, "/api/forms", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

			errResp := decode[middleware.ErrorResponse](t, resp)
			assert.Equal(t, tt.code, errResp.Code)
			assert.Equal(t, fiber.StatusBadRequest, errResp.Status)
			assert.ElementsMatch(t, tt.fields, fieldsOf(errResp))
		})
	}
}

func TestGetForm_NotFound(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/forms/does-not-exist", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	errResp := decode[middleware.ErrorResponse](t, resp)
	assert.Equal(t, "NOT_FOUND", errResp.Code)
}

func uploadRequest(t *testing.T, path, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = io.Copy(part, bytes.NewReader(content))
		require.NoError(t, err)
	} else {
		require.NoError(t, w.WriteField("note", "no file"))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUpdateHeaderImage_Upload(t *testing.T) {
	app := setupApp(t)
	id := createForm(t, app)["id"].(string)
	path := "/api/forms/" + id + "/headerImage"

	resp, err := app.Test(uploadRequest(t, path, "image", "banner.png", pngHeader), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	form := decode[dto.FormResponse](t, resp)
	assert.True(t, strings.HasPrefix(form.HeaderImage, "/uploads/"))

	resp, err = app.Test(uploadRequest(t, path, "image", "notes.png", []byte("plain text")), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, []string{"image"}, fieldsOf(decode[middleware.ErrorResponse](t, resp)))

	resp, err = app.Test(uploadRequest(t, path, "", "", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(uploadRequest(t, "/api/forms/missing/headerImage", "image", "banner.png", pngHeader), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestUpdateHeaderImage_Reference(t *testing.T) {
	app := setupApp(t)
	id := createForm(t, app)["id"].(string)

	resp := doJSON(t, app, http.MethodPost, "/api/forms/"+id+"/headerImage", `{"headerImage": "https://cdn.example.com/a.png"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://cdn.example.com/a.png", decode[dto.FormResponse](t, resp).HeaderImage)

	resp = doJSON(t, app, http.MethodPost, "/api/forms/"+id+"/headerImage", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSubmitAndGetResponse(t *testing.T) {
	app := setupApp(t)
	formID := createForm(t, app)["id"].(string)

	resp := doJSON(t, app, http.MethodPost, "/api/responses", `{
		"formId": "`+formID+`",
		"responses": {"q_1": {"Fruit": ["Apple"], "Veg": ["Carrot"]}, "q_2": ["sun"]}
	}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decode[map[string]any](t, resp)
	id := created["id"].(string)
	assert.Equal(t, id, created["_id"])
	assert.Equal(t, formID, created["formId"])
	assert.Contains(t, created["responses"], "1")
	assert.Contains(t, created["responses"], "2")

	resp = doJSON(t, app, http.MethodGet, "/api/responses/"+id, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	fetched := decode[map[string]any](t, resp)
	assert.Equal(t, created["responses"], fetched["responses"])
}

func TestSubmitResponse_Rejected(t *testing.T) {
	app := setupApp(t)
	formID := createForm(t, app)["id"].(string)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
		fields []string
	}{
		{
			name:   "missing formId",
			body:   `{"responses": {}}`,
			status: fiber.StatusBadRequest,
			code:   "VALIDATION_ERROR",
			fields: []string{"formId"},
		},
		{
			name:   "unknown form",
			body:   `{"formId": "missing", "responses": {}}`,
			status: fiber.StatusNotFound,
			code:   "NOT_FOUND",
		},
		{
			name:   "required question unanswered",
			body:   `{"formId": "` + formID + `", "responses": {"2": ["sun"]}}`,
			status: fiber.StatusBadRequest,
			code:   "VALIDATION_ERROR",
			fields: []string{"responses.1"},
		},
		{
			name:   "wrong shape",
			body:   `{"formId": "` + formID + `", "responses": {"1": {"Meat": ["Apple"]}}}`,
			status: fiber.StatusBadRequest,
			code:   "SHAPE_MISMATCH",
			fields: []string{"responses.1.Meat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodPost, "/api/responses", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			errResp := decode[middleware.ErrorResponse](t, resp)
			assert.Equal(t, tt.code, errResp.Code)
			assert.ElementsMatch(t, tt.fields, fieldsOf(errResp))
		})
	}
}

func TestClozeRoundTrip_LiteralIDs(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/forms", `{"title": "T", "questions": [
		{"id": "q1", "type": "cloze", "title": "Fill", "required": true,
		 "options": {"text": "The [cat] sat", "blanks": ["cat"]}}]}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	form := decode[dto.FormResponse](t, resp)
	require.Len(t, form.Questions, 1)
	assert.Equal(t, "q1", form.Questions[0].ID)

	resp = doJSON(t, app, http.MethodPost, "/api/responses", `{"formId": "`+form.ID+`", "responses": {"q1": ["cat"]}}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decode[map[string]any](t, resp)
	assert.Equal(t, map[string]any{"q1": []any{"cat"}}, created["responses"])

	resp = doJSON(t, app, http.MethodGet, "/api/responses/"+created["id"].(string), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, created["responses"], decode[map[string]any](t, resp)["responses"])

	resp = doJSON(t, app, http.MethodPost, "/api/responses", `{"formId": "`+form.ID+`", "responses": {}}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	errResp := decode[middleware.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION_ERROR", errResp.Code)
	assert.Equal(t, []string{"responses.q1"}, fieldsOf(errResp))
}

func TestGetResponse_NotFound(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/responses/missing", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodGet, "/health", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	health := decode[dto.HealthResponse](t, resp)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, config.StorageMemory, health.Storage)
	assert.Empty(t, health.Cache)
}
