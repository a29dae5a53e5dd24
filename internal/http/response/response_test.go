package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mundotea/mundotea-backend/internal/platform/apierr"
)

func serve(t *testing.T, err error) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	RespondAPIError(c, err)
	return rec, c
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) ErrorEnvelope {
	t.Helper()
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v (%s)", err, rec.Body.String())
	}
	return env
}

func TestRespondAPIErrorTypedErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
		msg    string
	}{
		{apierr.Validation("campo obrigatório: %s", "email"), 400, apierr.CodeValidation, "campo obrigatório: email"},
		{apierr.DuplicateEmail(), 400, apierr.CodeDuplicateEmail, "email já cadastrado"},
		{apierr.NotFound("sessão não encontrada"), 404, apierr.CodeNotFound, "sessão não encontrada"},
		{apierr.InvalidCredentials(), 401, apierr.CodeInvalidCredentials, "senha incorreta"},
		{apierr.Forbidden("conta desativada"), 403, apierr.CodeForbidden, "conta desativada"},
	}
	for _, tc := range cases {
		rec, _ := serve(t, tc.err)
		if rec.Code != tc.status {
			t.Fatalf("%s: status want=%d got=%d", tc.code, tc.status, rec.Code)
		}
		env := decode(t, rec)
		if env.Code != tc.code || env.Message != tc.msg {
			t.Fatalf("%s: got=%+v", tc.code, env)
		}
	}
}

func TestRespondAPIErrorHidesInternalCause(t *testing.T) {
	rec, c := serve(t, errors.New("pq: connection refused to 10.0.0.3"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: want=500 got=%d", rec.Code)
	}
	env := decode(t, rec)
	if env.Code != apierr.CodeInternal || strings.Contains(env.Message, "10.0.0.3") {
		t.Fatalf("leaked cause: %+v", env)
	}
	if len(c.Errors) != 1 || !strings.Contains(c.Errors.String(), "connection refused") {
		t.Fatalf("cause not recorded on context: %v", c.Errors)
	}
}
