package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipehub/backend/internal/logging"
	"github.com/pageza/recipehub/backend/internal/mocks"
	"github.com/pageza/recipehub/backend/internal/types"
)

const (
	userToken  = "user-token"
	adminToken = "admin-token"
)

var (
	ann   = types.Caller{UserID: 7, Name: "Ann", Role: types.RoleUser}
	admin = types.Caller{UserID: 1, Name: "Root", Role: types.RoleAdmin}
)

type testEnv struct {
	router      *gin.Engine
	auth        *mocks.MockAuthService
	aggregation *mocks.MockAggregationService
	recipes     *mocks.MockRecipeService
	moderation  *mocks.MockModerationService
	images      *mocks.MockImageService
	audit       *mocks.MockAuditService
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		router:      gin.New(),
		auth:        new(mocks.MockAuthService),
		aggregation: new(mocks.MockAggregationService),
		recipes:     new(mocks.MockRecipeService),
		moderation:  new(mocks.MockModerationService),
		images:      new(mocks.MockImageService),
		audit:       new(mocks.MockAuditService),
	}
	env.auth.On("ValidateToken", userToken).
		Return(&types.TokenClaims{UserID: ann.UserID, Name: ann.Name, Role: ann.Role}, nil).Maybe()
	env.auth.On("ValidateToken", adminToken).
		Return(&types.TokenClaims{UserID: admin.UserID, Name: admin.Name, Role: admin.Role}, nil).Maybe()

	SetupAPI(env.router, Services{
		Auth:        env.auth,
		Aggregation: env.aggregation,
		Recipes:     env.recipes,
		Moderation:  env.moderation,
		Images:      env.images,
		Audit:       env.audit,
	}, logging.Discard())

	t.Cleanup(func() {
		env.aggregation.AssertExpectations(t)
		env.recipes.AssertExpectations(t)
		env.moderation.AssertExpectations(t)
		env.images.AssertExpectations(t)
		env.audit.AssertExpectations(t)
	})
	return env
}

// do sends a request with an optional JSON body and bearer token
func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func ctxArg() interface{} { return mock.Anything }

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }

