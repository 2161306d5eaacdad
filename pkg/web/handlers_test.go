package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowfn/flowfn/pkg/models"
	"github.com/flowfn/flowfn/pkg/persistence/file"
	"github.com/flowfn/flowfn/pkg/registry"
	"github.com/flowfn/flowfn/pkg/runner"
	"github.com/flowfn/flowfn/pkg/web"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	reg, err := registry.New(slog.Default(),
		&models.NodeType{
			Type:   "const",
			Label:  "Constant",
			Inputs: []models.InputPort{{Name: "value", Type: "any"}},
			Handler: func(_ context.Context, inputs map[string]any) (map[string]any, error) {
				return map[string]any{"result": inputs["value"]}, nil
			},
		},
		&models.NodeType{
			Type: "fail",
			Handler: func(_ context.Context, _ map[string]any) (map[string]any, error) {
				return nil, errors.New("always fails")
			},
		},
	)
	require.NoError(t, err)

	handlers := web.NewAPIHandlers(
		slog.Default(),
		reg,
		runner.New(reg),
		file.NewFlowRepository(t.TempDir()),
		validator.New(validator.WithRequiredStructEnabled()),
	)

	app := fiber.New()
	handlers.Register(app)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	return resp, payload
}

func TestGetConfig(t *testing.T) {
	app := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/config", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var config struct {
		Nodes []map[string]any `json:"nodes"`
	}

	require.NoError(t, json.Unmarshal(body, &config))
	require.Len(t, config.Nodes, 2)
	assert.Equal(t, "const", config.Nodes[0]["type"])
}

func TestGetNodeType(t *testing.T) {
	app := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/nodes/const", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var nodeType models.NodeType

	require.NoError(t, json.Unmarshal(body, &nodeType))
	assert.Equal(t, "Constant", nodeType.Label)
}

func TestGetNodeType_Unknown(t *testing.T) {
	app := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/nodes/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRunGraph(t *testing.T) {
	app := setupTestApp(t)

	graph := `{
		"a": {"type": "const", "inputs": {"value": 42}},
		"b": {"type": "fail"}
	}`

	resp, body := doJSON(t, app, http.MethodPost, "/run", graph)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var results map[string]*models.ExecutionResult

	require.NoError(t, json.Unmarshal(body, &results))
	require.Len(t, results, 2)
	assert.Equal(t, models.NodeStatusSuccess, results["a"].Status)
	assert.Equal(t, 42.0, results["a"].Result)
	require.Equal(t, models.NodeStatusError, results["b"].Status)
	assert.Equal(t, models.KindOperationError, results["b"].Error.Kind)
}

func TestRunGraph_InvalidDocument(t *testing.T) {
	app := setupTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/run", `{"a": {"inputs": {}}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "validation_error")
}

func TestFlows_CRUDAndRun(t *testing.T) {
	app := setupTestApp(t)

	flowBody := `{
		"name": "Const demo",
		"description": "One constant",
		"graph": {"a": {"type": "const", "inputs": {"value": "hello"}}}
	}`

	resp, body := doJSON(t, app, http.MethodPost, "/flows/", flowBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Flow

	require.NoError(t, json.Unmarshal(body, &created))
	require.NotEmpty(t, created.ID)

	resp, body = doJSON(t, app, http.MethodGet, "/flows/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summaries []web.FlowSummary

	require.NoError(t, json.Unmarshal(body, &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "Const demo", summaries[0].Name)
	assert.Equal(t, 1, summaries[0].NodeCount)

	resp, body = doJSON(t, app, http.MethodPost, "/flows/"+created.ID+"/run", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var results map[string]*models.ExecutionResult

	require.NoError(t, json.Unmarshal(body, &results))
	assert.Equal(t, "hello", results["a"].Result)

	updated := `{
		"name": "Const demo v2",
		"graph": {"a": {"type": "const", "inputs": {"value": "bye"}}}
	}`

	resp, body = doJSON(t, app, http.MethodPut, "/flows/"+created.ID, updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var saved models.Flow

	require.NoError(t, json.Unmarshal(body, &saved))
	assert.Equal(t, created.ID, saved.ID)
	assert.Equal(t, "Const demo v2", saved.Name)

	resp, _ = doJSON(t, app, http.MethodDelete, "/flows/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/flows/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateFlow_RejectsShortName(t *testing.T) {
	app := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/flows/", `{"name": "ab", "graph": {}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRunFlow_Missing(t *testing.T) {
	app := setupTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/flows/ghost/run", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
