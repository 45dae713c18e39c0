package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/qrkiosk/internal/api/apierr"
	"github.com/mcoot/qrkiosk/internal/testutil"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serve(h http.Handler, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodDelete, "/api/adminui/rooms/delete/c1", nil)
	if key != "" {
		req.Header.Set(AdminKeyHeader, key)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAdminKey_Disabled(t *testing.T) {
	h := AdminKey(nil, testutil.NopLogger())(okHandler)
	assert.Equal(t, http.StatusOK, serve(h, "").Code)
}

func TestAdminKey_Enforced(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	h := AdminKey(hash, testutil.NopLogger())(okHandler)

	assert.Equal(t, http.StatusUnauthorized, serve(h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(h, "nope").Code)
	assert.Equal(t, http.StatusOK, serve(h, "secret").Code)
}

func TestHashAdminKey(t *testing.T) {
	hash, err := HashAdminKey("secret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret")))

	h := AdminKey([]byte(hash), testutil.NopLogger())(okHandler)
	assert.Equal(t, http.StatusOK, serve(h, "secret").Code)
}

func TestRecovery_WritesJSONEnvelope(t *testing.T) {
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	rr := serve(Recovery(testutil.NopLogger())(panicking), "")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, apierr.CodeInternalError, resp.Code)
}
