package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mundotea/mundotea-backend/internal/data/cache"
	"github.com/mundotea/mundotea-backend/internal/data/repos"
	"github.com/mundotea/mundotea-backend/internal/data/repos/testutil"
	"github.com/mundotea/mundotea-backend/internal/platform/ctxutil"
)

type memStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemStore() *memStore { return &memStore{files: map[string][]byte{}} }

func (s *memStore) UploadFile(_ context.Context, key string, file io.Reader) error {
	b, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = b
	return nil
}

func (s *memStore) DeleteFile(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key)
	return nil
}

func (s *memStore) GetPublicURL(key string) string { return "/uploads/" + key }

func (s *memStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[key]
	return ok
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

type testEnv struct {
	db    *gorm.DB
	repos repos.Set
	store *memStore

	tokens          TokenService
	achievements    AchievementService
	preferences     PreferenceService
	recommendations RecommendationService
	auth            AuthService
	profiles        ProfileService
	catalog         CatalogService
	sessions        SessionService
	images          ImageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	rs := repos.New(db, log)
	store := newMemStore()

	rules, err := LoadAchievementRules("")
	if err != nil {
		t.Fatalf("LoadAchievementRules: %v", err)
	}
	badges, err := NewBadgeService(log, store, "")
	if err != nil {
		t.Fatalf("NewBadgeService: %v", err)
	}
	e := &testEnv{db: db, repos: rs, store: store}
	e.tokens = NewTokenService(log, "test-secret", time.Hour)
	e.achievements = NewAchievementService(db, log, rs.ChildProfile, rs.Achievement, rules, badges, store)
	e.preferences = NewPreferenceService(db, log, rs.ChildProfile, rs.Preference)
	e.recommendations = NewRecommendationService(db, log, rs.ChildProfile, rs.Activity, rs.Recommendation)
	// bcrypt.MinCost keeps registration fast in tests.
	e.auth = NewAuthService(db, log, rs.Account, rs.ChildProfile, e.achievements, e.preferences, e.recommendations, e.tokens, 4)
	e.profiles = NewProfileService(db, log, rs.ChildProfile)
	e.catalog = NewCatalogService(db, log, rs.Activity, cache.Noop{})
	e.sessions = NewSessionService(db, log, rs.ChildProfile, rs.Activity, rs.PracticeSession, e.achievements)
	e.images = NewImageService(db, log, rs.ChildProfile, rs.PracticeSession, e.achievements, store)

	if err := e.catalog.EnsureDefaults(context.Background()); err != nil {
		t.Fatalf("EnsureDefaults: %v", err)
	}
	return e
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@example.com", prefix, strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

func validProfileInput() ProfileInput {
	level := 2
	return ProfileInput{
		ChildName:     "Lucas",
		BirthDate:     "2017-03-14",
		AutismLevel:   &level,
		FatherName:    "Carlos",
		MotherName:    "Beatriz",
		GuardianPhone: "11988887777",
		GuardianEmail: "beatriz@example.com",
	}
}

func validRegisterInput(email string) RegisterInput {
	return RegisterInput{Email: email, Password: "segredo123", ProfileInput: validProfileInput()}
}

// registered creates an account and returns a context acting as it.
func (e *testEnv) registered(t *testing.T) (context.Context, *RegisterResult) {
	t.Helper()
	res, err := e.auth.Register(context.Background(), validRegisterInput(uniqueEmail("familia")))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return actingAs(res.AccountID), res
}

func actingAs(accountID uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{AccountID: accountID})
}

func (e *testEnv) activityID(t *testing.T, key string) uuid.UUID {
	t.Helper()
	list, err := e.catalog.ListActive(context.Background())
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	for _, a := range list {
		if a.Key == key {
			return a.ID
		}
	}
	t.Fatalf("activity %q not in catalog", key)
	return uuid.Nil
}

func pngBase64(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }
