package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mundotea/mundotea-backend/internal/data/cache"
	"github.com/mundotea/mundotea-backend/internal/data/repos"
	"github.com/mundotea/mundotea-backend/internal/data/repos/testutil"
	httpH "github.com/mundotea/mundotea-backend/internal/http/handlers"
	httpMW "github.com/mundotea/mundotea-backend/internal/http/middleware"
	"github.com/mundotea/mundotea-backend/internal/observability"
	"github.com/mundotea/mundotea-backend/internal/platform/localstore"
	"github.com/mundotea/mundotea-backend/internal/services"
)

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	rs := repos.New(db, log)

	uploadDir := t.TempDir()
	store, err := localstore.New(log, uploadDir, "")
	if err != nil {
		t.Fatalf("localstore: %v", err)
	}
	rules, err := services.LoadAchievementRules("")
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	badges, err := services.NewBadgeService(log, store, "")
	if err != nil {
		t.Fatalf("badges: %v", err)
	}
	tokens := services.NewTokenService(log, "router-secret", time.Hour)
	achievements := services.NewAchievementService(db, log, rs.ChildProfile, rs.Achievement, rules, badges, store)
	preferences := services.NewPreferenceService(db, log, rs.ChildProfile, rs.Preference)
	recommendations := services.NewRecommendationService(db, log, rs.ChildProfile, rs.Activity, rs.Recommendation)
	catalog := services.NewCatalogService(db, log, rs.Activity, cache.Noop{})
	if err := catalog.EnsureDefaults(t.Context()); err != nil {
		t.Fatalf("EnsureDefaults: %v", err)
	}

	engine := NewRouter(RouterConfig{
		Log:            log,
		Metrics:        observability.Init(log),
		UploadDir:      uploadDir,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, tokens),
		HealthHandler:  httpH.NewHealthHandler(nil),
		AuthHandler: httpH.NewAuthHandler(services.NewAuthService(
			db, log, rs.Account, rs.ChildProfile, achievements, preferences, recommendations, tokens, 4,
		)),
		ProfileHandler: httpH.NewProfileHandler(services.NewProfileService(db, log, rs.ChildProfile)),
		SessionHandler: httpH.NewSessionHandler(
			services.NewSessionService(db, log, rs.ChildProfile, rs.Activity, rs.PracticeSession, achievements),
			services.NewImageService(db, log, rs.ChildProfile, rs.PracticeSession, achievements, store),
		),
		AchievementHandler: httpH.NewAchievementHandler(achievements),
		ActivityHandler:    httpH.NewActivityHandler(catalog),
		PreferenceHandler:  httpH.NewPreferenceHandler(preferences, recommendations),
	})
	return &testAPI{t: t, engine: engine}
}

func (a *testAPI) do(method, path, token string, body any) (int, []byte) {
	a.t.Helper()
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			a.t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec.Code, rec.Body.Bytes()
}

func decodeInto(t *testing.T, raw []byte, dst any) {
	t.Helper()
	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
}

func registerBody(email string) map[string]any {
	return map[string]any{
		"email":           email,
		"senha":           "segredo123",
		"nome_crianca":    "Lucas",
		"data_nascimento": "2017-03-14",
		"nivel_autismo":   2,
		"pai":             "Carlos",
		"mae":             "Beatriz",
		"telefone_resp":   "11988887777",
		"email_resp":      "beatriz@example.com",
	}
}

func (a *testAPI) register(email string) string {
	a.t.Helper()
	status, body := a.do(http.MethodPost, "/registrar", "", registerBody(email))
	if status != http.StatusCreated {
		a.t.Fatalf("registrar: status=%d body=%s", status, body)
	}
	var res struct {
		Token string `json:"token"`
	}
	decodeInto(a.t, body, &res)
	return res.Token
}

func uniqueEmail() string {
	return fmt.Sprintf("rota-%s@example.com", uuid.NewString()[:8])
}

func TestHealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)
	status, body := api.do(http.MethodGet, "/", "", nil)
	if status != http.StatusOK || !strings.Contains(string(body), "API MundoTEA funcionando!") {
		t.Fatalf("GET /: status=%d body=%s", status, body)
	}
	if status, _ := api.do(http.MethodGet, "/healthcheck", "", nil); status != http.StatusOK {
		t.Fatalf("GET /healthcheck: status=%d", status)
	}
	status, body = api.do(http.MethodGet, "/metrics", "", nil)
	if status != http.StatusOK || !strings.Contains(string(body), "mundotea_http_requests_total") {
		t.Fatalf("GET /metrics: status=%d", status)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	api := newTestAPI(t)
	email := uniqueEmail()

	status, body := api.do(http.MethodPost, "/registrar", "", registerBody(email))
	if status != http.StatusCreated {
		t.Fatalf("registrar: status=%d body=%s", status, body)
	}
	var reg map[string]any
	decodeInto(t, body, &reg)
	for _, k := range []string{"mensagem", "token", "login_id", "crianca_id"} {
		if reg[k] == nil || reg[k] == "" {
			t.Fatalf("registrar: missing %q in %s", k, body)
		}
	}

	status, body = api.do(http.MethodPost, "/registrar", "", registerBody(email))
	var env map[string]string
	decodeInto(t, body, &env)
	if status != http.StatusBadRequest || env["codigo"] != "duplicate_email" || env["erro"] == "" {
		t.Fatalf("duplicate: status=%d body=%s", status, body)
	}

	status, body = api.do(http.MethodPost, "/login", "", map[string]string{"email": email, "senha": "segredo123"})
	var login map[string]any
	decodeInto(t, body, &login)
	if status != http.StatusOK || login["token"] == "" || login["login_id"] != reg["login_id"] {
		t.Fatalf("login: status=%d body=%s", status, body)
	}

	status, body = api.do(http.MethodPost, "/login", "", map[string]string{"email": email, "senha": "errada"})
	decodeInto(t, body, &env)
	if status != http.StatusUnauthorized || env["codigo"] != "invalid_credentials" {
		t.Fatalf("wrong password: status=%d body=%s", status, body)
	}

	status, body = api.do(http.MethodPost, "/login", "", map[string]string{"email": uniqueEmail(), "senha": "x"})
	if status != http.StatusNotFound {
		t.Fatalf("unknown email: status=%d body=%s", status, body)
	}

	status, body = api.do(http.MethodPost, "/registrar", "", `{"email": `)
	decodeInto(t, body, &env)
	if status != http.StatusBadRequest || env["codigo"] != "validation_error" {
		t.Fatalf("malformed json: status=%d body=%s", status, body)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)
	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/perfil"},
		{http.MethodPut, "/perfil/atualizar"},
		{http.MethodPost, "/sessoes"},
		{http.MethodPost, "/sessoes/atualizar"},
		{http.MethodPost, "/sessoes/salvar_imagem"},
		{http.MethodGet, "/conquistas"},
		{http.MethodPost, "/atividades"},
		{http.MethodGet, "/preferencias"},
		{http.MethodGet, "/recomendacoes"},
	} {
		if status, body := api.do(r.method, r.path, "", nil); status != http.StatusUnauthorized {
			t.Fatalf("%s %s: status=%d body=%s", r.method, r.path, status, body)
		}
	}
	if status, _ := api.do(http.MethodGet, "/atividades/listar", "", nil); status != http.StatusOK {
		t.Fatalf("public catalog: status=%d", status)
	}
}

func TestSessionFlowUnlocksAchievements(t *testing.T) {
	api := newTestAPI(t)
	token := api.register(uniqueEmail())

	status, body := api.do(http.MethodGet, "/atividades/listar", "", nil)
	if status != http.StatusOK {
		t.Fatalf("listar: status=%d", status)
	}
	var activities []struct {
		ID  string `json:"atividade_id"`
		Key string `json:"chave"`
	}
	decodeInto(t, body, &activities)
	var colorir string
	for _, a := range activities {
		if a.Key == "colorir" {
			colorir = a.ID
		}
	}
	if colorir == "" {
		t.Fatalf("colorir missing from %s", body)
	}

	status, body = api.do(http.MethodPost, "/sessoes", token, map[string]string{"atividade_id": colorir})
	if status != http.StatusCreated {
		t.Fatalf("sessoes: status=%d body=%s", status, body)
	}
	var started struct {
		ID string `json:"sessao_id"`
	}
	decodeInto(t, body, &started)

	complete := map[string]any{"sessao_id": started.ID, "tempo_gasto_segundos": 120, "score": 10, "acuracia": 75}
	status, body = api.do(http.MethodPut, "/sessoes/atualizar", token, complete)
	var done map[string]string
	decodeInto(t, body, &done)
	if status != http.StatusOK || done["conquista"] != "Primeiro Colorir" {
		t.Fatalf("atualizar: status=%d body=%s", status, body)
	}
	if status, _ = api.do(http.MethodPost, "/sessoes/atualizar", token, complete); status != http.StatusBadRequest {
		t.Fatalf("second completion: status=%d", status)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 3, 3))); err != nil {
		t.Fatalf("png: %v", err)
	}
	status, body = api.do(http.MethodPost, "/sessoes/salvar_imagem", token, map[string]string{
		"sessao_id": started.ID,
		"imagem":    "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	})
	var saved map[string]string
	decodeInto(t, body, &saved)
	if status != http.StatusCreated || !strings.HasSuffix(saved["arquivo"], ".png") {
		t.Fatalf("salvar_imagem: status=%d body=%s", status, body)
	}
	if status, _ := api.do(http.MethodGet, saved["url"], "", nil); status != http.StatusOK {
		t.Fatalf("GET %s: status=%d", saved["url"], status)
	}
	if _, listing := api.do(http.MethodGet, "/uploads/", "", nil); bytes.Contains(listing, []byte(saved["arquivo"])) {
		t.Fatalf("GET /uploads/ lists stored files: %s", listing)
	}
	if status, _ := api.do(http.MethodGet, "/perfil?token="+token, "", nil); status != http.StatusUnauthorized {
		t.Fatalf("GET /perfil?token=: want=%d got=%d", http.StatusUnauthorized, status)
	}

	status, body = api.do(http.MethodGet, "/conquistas", token, nil)
	var unlocked []map[string]any
	decodeInto(t, body, &unlocked)
	if status != http.StatusOK || len(unlocked) != 1 || unlocked[0]["nome"] != "Primeiro Colorir" {
		t.Fatalf("conquistas: status=%d body=%s", status, body)
	}
	status, body = api.do(http.MethodGet, "/conquistas?todas=1", token, nil)
	var all []map[string]any
	decodeInto(t, body, &all)
	if status != http.StatusOK || len(all) != 3 {
		t.Fatalf("conquistas?todas=1: status=%d body=%s", status, body)
	}
}

func TestProfilePreferencesAndActivities(t *testing.T) {
	api := newTestAPI(t)
	token := api.register(uniqueEmail())

	status, body := api.do(http.MethodGet, "/perfil", token, nil)
	if status != http.StatusOK || !strings.Contains(string(body), `"nome_crianca":"Lucas"`) {
		t.Fatalf("perfil: status=%d body=%s", status, body)
	}

	update := registerBody("")
	delete(update, "email")
	delete(update, "senha")
	update["nome_crianca"] = "Lucas Souza"
	update["necessidades"] = "Rotina visual"
	status, body = api.do(http.MethodPost, "/perfil/atualizar", token, update)
	if status != http.StatusOK || !strings.Contains(string(body), "Lucas Souza") {
		t.Fatalf("perfil/atualizar: status=%d body=%s", status, body)
	}
	delete(update, "pai")
	if status, body = api.do(http.MethodPut, "/perfil/atualizar", token, update); status != http.StatusBadRequest {
		t.Fatalf("partial update: status=%d body=%s", status, body)
	}

	status, body = api.do(http.MethodPost, "/preferencias", token, map[string]string{"chave": "tema", "valor": "escuro"})
	var prefs map[string]string
	decodeInto(t, body, &prefs)
	if status != http.StatusOK || prefs["tema"] != "escuro" {
		t.Fatalf("preferencias: status=%d body=%s", status, body)
	}

	status, body = api.do(http.MethodGet, "/recomendacoes", token, nil)
	var recs []map[string]any
	decodeInto(t, body, &recs)
	if status != http.StatusOK || len(recs) < 3 {
		t.Fatalf("recomendacoes: status=%d body=%s", status, body)
	}

	title := "Respiração " + uuid.NewString()[:6]
	status, body = api.do(http.MethodPost, "/atividades", token, map[string]string{"titulo": title})
	var created map[string]string
	decodeInto(t, body, &created)
	if status != http.StatusCreated || !strings.HasPrefix(created["chave"], "respiracao-") {
		t.Fatalf("atividades: status=%d body=%s", status, body)
	}
	if status, _ = api.do(http.MethodPost, "/atividades", token, map[string]string{"titulo": title}); status != http.StatusBadRequest {
		t.Fatalf("duplicate activity: status=%d", status)
	}
}
