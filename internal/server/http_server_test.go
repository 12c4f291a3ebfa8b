package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svcErr "github.com/oggyb/cardswap/internal/errors"
	"github.com/oggyb/cardswap/internal/server"
	"github.com/oggyb/cardswap/internal/service/trade"
	"github.com/oggyb/cardswap/internal/testutil"
)

type stubRegistrar struct{}

func (stubRegistrar) Register(g *gin.RouterGroup) {
	g.GET("/whoami", func(c *gin.Context) {
		server.OK(c, http.StatusOK, gin.H{"user_id": server.UserID(c)})
	})
	g.GET("/items/:id", func(c *gin.Context) {
		server.Fail(c, svcErr.NotFound("item not found"))
	})
	g.POST("/items", func(c *gin.Context) {
		var body struct {
			Name string `json:"name" binding:"required"`
		}
		if !server.BindJSON(c, &body) {
			return
		}
		server.OK(c, http.StatusCreated, body)
	})
}

func (stubRegistrar) RegisterPublic(g *gin.RouterGroup) {
	g.GET("/open", func(c *gin.Context) { server.OK(c, http.StatusOK, "hello") })
}

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	appCtx, _ := testutil.NewApp(t)
	return server.NewRouter(appCtx, stubRegistrar{})
}

func do(t *testing.T, h http.Handler, method, path, userID, body string) (*httptest.ResponseRecorder, server.Envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		req.Header.Set(server.HeaderUserID, userID)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env server.Envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestHealthz(t *testing.T) {
	rec, env := do(t, newRouter(t), http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"status": "ok"}, env.Data)
	assert.NotEmpty(t, rec.Header().Get(server.HeaderRequestID))
}

func TestRequireUser(t *testing.T) {
	h := newRouter(t)

	rec, env := do(t, h, http.MethodGet, "/v1/whoami", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "unauthorized", env.Error.Code)

	rec, _ = do(t, h, http.MethodGet, "/v1/whoami", "not-a-uuid", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	id := uuid.NewString()
	rec, env = do(t, h, http.MethodGet, "/v1/whoami", id, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"user_id": id}, env.Data)
}

func TestPublicRoutesSkipAuth(t *testing.T) {
	rec, env := do(t, newRouter(t), http.MethodGet, "/v1/open", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", env.Data)
}

func TestErrorEnvelope(t *testing.T) {
	h := newRouter(t)
	id := uuid.NewString()

	rec, env := do(t, h, http.MethodGet, "/v1/items/42", id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_found", env.Error.Code)
	assert.Equal(t, "item not found", env.Error.Message)
	assert.Nil(t, env.Data)

	rec, env = do(t, h, http.MethodPost, "/v1/items", id, `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation_error", env.Error.Code)
}

func TestTradeRoutes(t *testing.T) {
	appCtx, _ := testutil.NewApp(t)
	h := server.NewRouter(appCtx, trade.NewRegistrar(appCtx))
	alice := testutil.CreateUser(t, appCtx.Store, "alice", "TYO")
	bob := testutil.CreateUser(t, appCtx.Store, "bob", "TYO")
	aCard := testutil.CreateCard(t, appCtx.Store, alice.ID)

	body := `{"responder_id":"` + bob.ID + `","offered_card_ids":["` + aCard.ID + `"]}`
	rec, env := do(t, h, http.MethodPost, "/v1/trades", alice.ID, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "proposed", data["status"])
	tradeID, _ := data["id"].(string)

	// the card is reserved by the first proposal
	rec, env = do(t, h, http.MethodPost, "/v1/trades", alice.ID, body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "invalid_state", env.Error.Code)

	rec, _ = do(t, h, http.MethodGet, "/v1/trades/"+tradeID, uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/v1/trades/"+tradeID+"/confirm", bob.ID, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env = do(t, h, http.MethodPost, "/v1/trades/"+tradeID+"/accept", bob.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	data, _ = env.Data.(map[string]any)
	assert.Equal(t, "accepted", data["status"])
}
