package venues

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	SetupVenueRoutes(r.Group("/api/v1"), NewController(newTestService(t, newFakeRepository())))
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

const stadiumPayload = `{
	"layoutType": "STADIUM",
	"root": {
		"id": "arena",
		"name": "Arena",
		"children": [
			{"id": "north", "kind": "STAND", "children": [
				{"id": "n1", "kind": "SECTION", "children": [
					{"id": "n1-r1", "kind": "ROW", "children": [
						{"id": "n1-r1-s1", "kind": "SEAT", "seatNumber": 1},
						{"id": "n1-r1-s2", "kind": "SEAT", "seatNumber": 2}
					]}
				]}
			]},
			{"id": "south", "kind": "STAND", "visualWeight": -4},
			{"id": "east", "kind": "STAND", "visualWeight": 2}
		]
	}
}`

func TestController_ImportAndRender(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/v1/venues/import", stadiumPayload)
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	var imported ImportVenueResponse
	require.NoError(t, json.Unmarshal(env.Data, &imported))
	assert.Equal(t, "arena", imported.VenueID)
	assert.Equal(t, 2, imported.Seats)
	require.Len(t, imported.Issues, 1)
	assert.Equal(t, "south", imported.Issues[0].NodeID)

	w, env = do(t, r, http.MethodGet, "/api/v1/venues/arena/geometry?width=800&height=800&padding=20", "")
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var g struct {
		Mode   string            `json:"mode"`
		Shapes []json.RawMessage `json:"shapes"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &g))
	assert.Equal(t, "RADIAL", g.Mode)
	assert.Len(t, g.Shapes, 3)

	w, _ = do(t, r, http.MethodGet, "/api/v1/venues/arena/geometry?width=0&height=800", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, r, http.MethodPost, "/api/v1/venues/arena/hit-test", `{"x":400,"y":400,"width":800,"height":800,"padding":20}`)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	assert.JSONEq(t, `{"hit":false}`, string(env.Data), "the pitch is not interactive")
}

func TestController_NodeEditing(t *testing.T) {
	r := newTestRouter(t)
	w, env := do(t, r, http.MethodPost, "/api/v1/venues/import", stadiumPayload)
	require.Equal(t, http.StatusCreated, w.Code, env.Message)

	w, env = do(t, r, http.MethodPost, "/api/v1/venues/arena/nodes", `{"id":"n2","parentId":"north","kind":"SECTION"}`)
	require.Equal(t, http.StatusCreated, w.Code, env.Message)

	w, _ = do(t, r, http.MethodPost, "/api/v1/venues/arena/nodes", `{"id":"n2","parentId":"north","kind":"SECTION"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = do(t, r, http.MethodPatch, "/api/v1/venues/arena/nodes/n2/weight", `{"visualWeight":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPatch, "/api/v1/venues/arena/nodes/north/parent", `{"parentId":"n1-r1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "cycle")

	w, env = do(t, r, http.MethodGet, "/api/v1/venues/arena/nodes/north/children", "")
	require.Equal(t, http.StatusOK, w.Code)
	var children ChildrenResponse
	require.NoError(t, json.Unmarshal(env.Data, &children))
	require.Len(t, children.Children, 2)
	assert.Equal(t, "n2", children.Children[1].ID)

	w, _ = do(t, r, http.MethodDelete, "/api/v1/venues/arena/nodes/n1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodDelete, "/api/v1/venues/arena/nodes/n1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = do(t, r, http.MethodGet, "/api/v1/venues/elsewhere", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
