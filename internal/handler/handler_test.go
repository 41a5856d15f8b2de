package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/jobtrack-ai/jobtrack-api/internal/middleware"
	"github.com/jobtrack-ai/jobtrack-api/internal/model"
	"github.com/jobtrack-ai/jobtrack-api/internal/repository"
	"github.com/jobtrack-ai/jobtrack-api/internal/service"
	"github.com/jobtrack-ai/jobtrack-api/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testMaxUpload = 1 << 20

// ── In-memory stores ─────────────────────────────────

type memUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func (s *memUsers) find(match func(*model.User) bool) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	return s.find(func(u *model.User) bool { return u.Username == username })
}

func (s *memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return s.find(func(u *model.User) bool { return u.Email == email })
}

func (s *memUsers) Create(_ context.Context, username, email, hash string, token *string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &model.User{ID: uuid.New(), Username: username, Email: email, PasswordHash: hash,
		IsVerified: token == nil, VerificationToken: token, CreatedAt: time.Now()}
	s.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (s *memUsers) VerifyByToken(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.VerificationToken != nil && *u.VerificationToken == token {
			u.IsVerified, u.VerificationToken = true, nil
			return true, nil
		}
	}
	return false, nil
}

func (s *memUsers) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[id]
	delete(s.users, id)
	return ok, nil
}

type memApps struct {
	mu   sync.Mutex
	apps map[uuid.UUID]model.Application
	// err, when set, is returned by every call
	err error
}

func (s *memApps) Create(_ context.Context, a *model.Application) (*model.Application, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := *a
	out.ID = uuid.New()
	out.CreatedAt = time.Now()
	if out.AppliedDate.IsZero() {
		y, m, d := time.Now().UTC().Date()
		out.AppliedDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	s.apps[out.ID] = out
	return &out, nil
}

func (s *memApps) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Application, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Application
	for _, a := range s.apps {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedDate.After(out[j].AppliedDate) })
	return out, nil
}

func (s *memApps) FindByID(_ context.Context, id, userID uuid.UUID) (*model.Application, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok || a.UserID != userID {
		return nil, nil
	}
	return &a, nil
}

func (s *memApps) Update(_ context.Context, a *model.Application) (*model.Application, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.apps[a.ID]
	if !ok || existing.UserID != a.UserID {
		return nil, repository.ErrNotFound
	}
	out := *a
	s.apps[a.ID] = out
	return &out, nil
}

func (s *memApps) Delete(_ context.Context, id, userID uuid.UUID) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok || a.UserID != userID {
		return false, nil
	}
	delete(s.apps, id)
	return true, nil
}

type memResumes struct {
	mu      sync.Mutex
	resumes map[uuid.UUID]model.Resume
}

func (s *memResumes) Create(_ context.Context, userID uuid.UUID, fileName, originalName string) (*model.Resume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := model.Resume{ID: uuid.New(), UserID: userID, FileName: fileName, OriginalName: originalName, CreatedAt: time.Now()}
	s.resumes[r.ID] = r
	return &r, nil
}

func (s *memResumes) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Resume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Resume
	for _, r := range s.resumes {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memResumes) FindByID(_ context.Context, id, userID uuid.UUID) (*model.Resume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resumes[id]
	if !ok || r.UserID != userID {
		return nil, nil
	}
	return &r, nil
}

func (s *memResumes) SetPrimary(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok := s.resumes[id]
	if !ok || target.UserID != userID {
		return repository.ErrNotFound
	}
	for rid, r := range s.resumes {
		if r.UserID == userID {
			r.IsPrimary = rid == id
			s.resumes[rid] = r
		}
	}
	return nil
}

func (s *memResumes) Delete(_ context.Context, id, userID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resumes[id]
	if !ok || r.UserID != userID {
		return false, nil
	}
	delete(s.resumes, id)
	return true, nil
}

type stubGenerator struct {
	output string
	err    error
}

func (g *stubGenerator) GenerateJSON(context.Context, string, string) (string, error) {
	return g.output, g.err
}

// ── Test environment ─────────────────────────────────

type testEnv struct {
	router  *gin.Engine
	tokens  *service.TokenManager
	users   *memUsers
	apps    *memApps
	resumes *memResumes
	files   storage.FileStore
	gen     *stubGenerator
}

func newTestEnv(t *testing.T, requireVerification bool) *testEnv {
	t.Helper()
	env := &testEnv{
		tokens:  service.NewTokenManager("test-secret", time.Hour),
		users:   &memUsers{users: map[uuid.UUID]*model.User{}},
		apps:    &memApps{apps: map[uuid.UUID]model.Application{}},
		resumes: &memResumes{resumes: map[uuid.UUID]model.Resume{}},
		files:   storage.NewFSStore(afero.NewMemMapFs()),
		gen:     &stubGenerator{output: `{"score": 64, "reasoning": "Decent fit"}`},
	}

	authService := service.NewAuthService(env.users, env.tokens, service.LogMailer{}, service.AuthOptions{
		RequireEmailVerification: requireVerification,
		AppBaseURL:               "http://localhost:5173",
	})
	matchService := service.NewResumeMatchService(env.resumes, env.apps, env.files, service.NewMatcher(env.gen))

	authH := NewAuthHandler(authService)
	appH := NewApplicationHandler(env.apps)
	extractH := NewExtractHandler(service.NewExtractor(nil))
	resumeH := NewResumeHandler(env.resumes, env.files, matchService, testMaxUpload)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/health", Health)
	api.POST("/auth/register", authH.Register)
	api.POST("/auth/verify-email", authH.VerifyEmail)
	api.POST("/auth/login", authH.Login)

	protected := api.Group("/", middleware.NewAuthMiddleware(env.tokens).Authenticate())
	protected.DELETE("/auth/delete-account", authH.DeleteAccount)
	protected.GET("/applications", appH.List)
	protected.POST("/applications", appH.Create)
	protected.GET("/applications/:id", appH.Get)
	protected.PUT("/applications/:id", appH.Update)
	protected.DELETE("/applications/:id", appH.Delete)
	protected.POST("/extract", extractH.Extract)
	protected.POST("/resumes", middleware.MaxBodySize(testMaxUpload+4096), resumeH.Upload)
	protected.GET("/resumes", resumeH.List)
	protected.PUT("/resumes/:id/primary", resumeH.SetPrimary)
	protected.DELETE("/resumes/:id", resumeH.Delete)
	protected.GET("/resumes/:id/download", resumeH.Download)
	protected.POST("/resumes/:id/match", resumeH.Match)

	env.router = r
	return env
}

// tokenFor issues a bearer token for a fresh user id that need not exist in the store
func (env *testEnv) tokenFor(t *testing.T) (string, uuid.UUID) {
	t.Helper()
	id := uuid.New()
	token, err := env.tokens.Issue(&model.User{ID: id, Username: "user-" + id.String()[:8]})
	require.NoError(t, err)
	return token, id
}

func makeJSONRequest(body any, authToken string, r *gin.Engine, endpoint string, method string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		payload, _ = json.Marshal(b)
	}

	req, _ := http.NewRequest(method, endpoint, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	resp := map[string]interface{}{}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)

	return rec, resp
}

func makeUploadRequest(t *testing.T, r *gin.Engine, authToken, field, fileName, contentType string, data []byte) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, fileName))
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	} else {
		require.NoError(t, w.WriteField("note", "no file here"))
	}
	require.NoError(t, w.Close())

	req, _ := http.NewRequest(http.MethodPost, "/api/resumes", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+authToken)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	resp := map[string]interface{}{}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

// minimalPDF builds a one-page PDF that shows text
func minimalPDF(text string) []byte {
	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return b.Bytes()
}
