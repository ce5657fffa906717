package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBearerToken(t *testing.T) {
	token, err := getBearerToken("Bearer abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	// whitespace is squashed before splitting
	token, err = getBearerToken("  Bearer   abc123  ")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic abc123", "Bearer undefined"} {
		_, err = getBearerToken(header)
		assert.Error(t, err, "header: %q", header)
	}
}

func signedTestToken(t *testing.T, key string) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "tester"}).SignedString([]byte(key))
	require.NoError(t, err)

	return token
}

func TestAuthenticateHandler(t *testing.T) {
	svc := newTestService("http://localhost:9")
	svc.config.Service.JWTKey = "sekrit"

	c, _ := newTestGinContext("GET", "/api/search")
	c.Request.Header.Set("Authorization", "Bearer "+signedTestToken(t, "sekrit"))

	svc.authenticateHandler(c)
	assert.False(t, c.IsAborted())

	_, ok := c.Get("claims")
	assert.True(t, ok)
}

func TestAuthenticateHandlerBadSignature(t *testing.T) {
	svc := newTestService("http://localhost:9")
	svc.config.Service.JWTKey = "sekrit"

	c, w := newTestGinContext("GET", "/api/search")
	c.Request.Header.Set("Authorization", "Bearer "+signedTestToken(t, "wrong-key"))

	svc.authenticateHandler(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateHandlerMissingHeader(t *testing.T) {
	svc := newTestService("http://localhost:9")
	svc.config.Service.JWTKey = "sekrit"

	c, w := newTestGinContext("GET", "/api/search")

	svc.authenticateHandler(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateHandlerOpenWithoutKey(t *testing.T) {
	svc := newTestService("http://localhost:9")

	// no configured key: the api is open
	c, _ := newTestGinContext("GET", "/api/search")

	svc.authenticateHandler(c)
	assert.False(t, c.IsAborted())
}

func TestCommitHandler(t *testing.T) {
	svc := newTestService("http://localhost:9")

	body := `{"pending":{"terms":[{"query":"kitab"}]},"action":"search"}`

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/state/commit", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	svc.commitHandler(c)

	require.Equal(t, http.StatusOK, w.Code)

	var result CommitResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	assert.Equal(t, "q1=kitab", result.URL)
	require.NotNil(t, result.State)
	assert.Equal(t, defaultPage, result.State.Page)
	assert.Equal(t, "all", result.State.Terms[0].Field)
}

func TestHealthCheckHandler(t *testing.T) {
	engine := stubEngine{total: 0}
	server := newStubServer(t, &engine)

	svc := newTestService(server.URL)
	c, w := newTestGinContext("GET", "/healthcheck")

	svc.healthCheckHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"elasticsearch":{"healthy":true}`)
}

func TestHealthCheckHandlerEngineDown(t *testing.T) {
	engine := stubEngine{fail: true}
	server := newStubServer(t, &engine)

	svc := newTestService(server.URL)
	c, w := newTestGinContext("GET", "/healthcheck")

	svc.healthCheckHandler(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy":false`)
}
