package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowfn/flowfn/pkg/persistence/file"
	"github.com/flowfn/flowfn/pkg/registry"
	"github.com/flowfn/flowfn/pkg/runner"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	reg, err := registry.Default(slog.Default())
	require.NoError(t, err)

	api := NewAPI(slog.Default(), reg, runner.New(reg), file.NewFlowRepository(t.TempDir()))

	return api.App()
}

func get(t *testing.T, app *fiber.App, target string) (*http.Response, string) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	return resp, string(body)
}

func TestAPI_RootEndpoint(t *testing.T) {
	app := setupTestApp(t)

	resp, body := get(t, app, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "flowfn API", body)
}

func TestAPI_Liveness(t *testing.T) {
	app := setupTestApp(t)

	resp, body := get(t, app, "/livez")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body)
}

func TestAPI_ConfigListsCatalog(t *testing.T) {
	app := setupTestApp(t)

	resp, body := get(t, app, "/config")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "sampledata")
	assert.Contains(t, body, "textnote")
}

func TestGraphTracer(t *testing.T) {
	ctx := context.Background()

	tracer, err := graphTracer(ctx, false)
	require.NoError(t, err)
	assert.NotNil(t, tracer)

	tracer, err = graphTracer(ctx, true)
	require.NoError(t, err)
	assert.NotNil(t, tracer)
}
