// Copyright (c) 2026 Instant API Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rpc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getSpec(t *testing.T, api *Api, path string) map[string]any {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, path, nil)
	api.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var spec map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &spec))
	return spec
}

func TestApi_OpenAPISchema(t *testing.T) {
	t.Run("documents the generic endpoint and every method route", func(t *testing.T) {
		api := newPointApi(t)

		spec := getSpec(t, api, "/api/openapi.json")

		info := spec["info"].(map[string]any)
		assert.Equal(t, "Point API", info["title"])
		assert.Equal(t, "v0.1.0", info["version"])

		paths := spec["paths"].(map[string]any)
		assert.Contains(t, paths, "/api/")
		assert.Contains(t, paths, "/api/scale")
		assert.Contains(t, paths, "/api/translate")
	})

	t.Run("carries summary, description and tags into the operation", func(t *testing.T) {
		api := NewApi("Test", "v0")
		require.NoError(t, api.Register("scale", pointMethods{}.Scale,
			Summary("Scale a point"),
			Description("Multiplies both coordinates."),
			Tags("Point methods"),
		))

		spec := getSpec(t, api, "/api/openapi.json")
		op := spec["paths"].(map[string]any)["/api/scale"].(map[string]any)["post"].(map[string]any)

		assert.Equal(t, "Scale a point", op["summary"])
		assert.Equal(t, "Multiplies both coordinates.", op["description"])
		assert.Equal(t, []any{"Point methods"}, op["tags"])
	})

	t.Run("merges view attributes as extensions", func(t *testing.T) {
		api := NewApi("Test", "v0")
		require.NoError(t, api.Register("scale", pointMethods{}.Scale,
			ViewAttr("x-visibility", "internal"),
		))

		spec := getSpec(t, api, "/api/openapi.json")
		op := spec["paths"].(map[string]any)["/api/scale"].(map[string]any)["post"].(map[string]any)

		assert.Equal(t, "internal", op["x-visibility"])
	})

	t.Run("documents the request body from the parameter schema", func(t *testing.T) {
		api := NewApi("Test", "v0")
		require.NoError(t, api.Register("scale", pointMethods{}.Scale))

		spec := getSpec(t, api, "/api/openapi.json")
		op := spec["paths"].(map[string]any)["/api/scale"].(map[string]any)["post"].(map[string]any)

		body := op["requestBody"].(map[string]any)
		content := body["content"].(map[string]any)["application/json"].(map[string]any)
		schemaDef := content["schema"].(map[string]any)

		props := schemaDef["properties"].(map[string]any)
		assert.Contains(t, props, "p")
		assert.Contains(t, props, "factor")
		assert.ElementsMatch(t, []any{"p", "factor"}, schemaDef["required"])
	})

	t.Run("tags the generic endpoint separately", func(t *testing.T) {
		api := newPointApi(t)

		spec := getSpec(t, api, "/api/openapi.json")
		op := spec["paths"].(map[string]any)["/api/"].(map[string]any)["post"].(map[string]any)

		assert.Equal(t, []any{"JSON-RPC"}, op["tags"])
	})
}

func TestApi_BasePath(t *testing.T) {
	t.Run("moves all routes under the configured prefix", func(t *testing.T) {
		api := NewApi("Test", "v0", BasePath("/rpc"))
		require.NoError(t, api.Register("scale", pointMethods{}.Scale))

		assert.Equal(t, "/rpc/", api.BasePath())

		w := post(t, api, "/rpc/scale", `{"p": {"x": 1, "y": 2}, "factor": 3}`)
		require.Equal(t, http.StatusOK, w.Code)

		spec := getSpec(t, api, "/rpc/openapi.json")
		paths := spec["paths"].(map[string]any)
		assert.Contains(t, paths, "/rpc/")
		assert.Contains(t, paths, "/rpc/scale")

		w = post(t, api, "/api/scale", `{}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
