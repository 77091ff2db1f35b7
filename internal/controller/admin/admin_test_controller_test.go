package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/psytest/config"
	"github.com/lshigami/psytest/internal/dto"
	"github.com/lshigami/psytest/internal/middleware"
	"github.com/lshigami/psytest/internal/model"
	"github.com/lshigami/psytest/internal/repository"
	"github.com/lshigami/psytest/internal/service"
	"github.com/lshigami/psytest/internal/storage"
	"github.com/lshigami/psytest/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type server struct {
	router     *gin.Engine
	blobs      storage.BlobStore
	adminToken string
	psyToken   string
	userToken  string
}

func newServer(t *testing.T) *server {
	t.Helper()
	ctx := context.Background()
	db := testutil.NewDB(t)
	blobs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.JWT.Secret = "admin-secret"
	cfg.JWT.ExpiresIn = time.Hour

	tests := repository.NewTestRepository(db)
	questions := repository.NewQuestionRepository(db)
	results := repository.NewTestResultRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	users := repository.NewUserRepository(db)
	auth := service.NewAuthService(users, cfg)

	require.NoError(t, auth.SeedStaff(ctx, config.Seed{
		AdminEmail: "admin@example.com", AdminUsername: "admin", AdminPassword: "admin123",
		PsychologistEmail: "psy@example.com", PsychologistUsername: "psy", PsychologistPassword: "psy12345",
	}))
	login := func(name, password string) string {
		resp, err := auth.Login(ctx, dto.LoginRequest{Login: name, Password: password})
		require.NoError(t, err)
		return resp.Token
	}
	user, err := auth.Register(ctx, dto.RegisterRequest{Email: "u@example.com", Username: "user", Password: "secret1"})
	require.NoError(t, err)

	r := gin.New()
	rg := r.Group("/api/admin", middleware.RequireAuth(auth), middleware.RequireRole(model.RoleAdmin))
	NewAdminTestController(service.NewAdminTestService(tests, questions, results, answerRepo, blobs, db)).RegisterRoutes(rg)
	NewAdminUserController(service.NewAdminUserService(users)).RegisterRoutes(rg)

	return &server{
		router:     r,
		blobs:      blobs,
		adminToken: login("admin", "admin123"),
		psyToken:   login("psy", "psy12345"),
		userToken:  user.Token,
	}
}

func (s *server) serve(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *server) json(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return s.serve(req, token)
}

// multipartRequest builds a form with the given fields and an optional PNG image.
func multipartRequest(t *testing.T, method, path string, fields map[string]string, image []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="q.png"`)
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newServer(t)
	body := dto.CreateTestRequest{Name: "n", DisplayName: "d", Description: "d"}

	assert.Equal(t, http.StatusUnauthorized, s.json(t, http.MethodPost, "/api/admin/tests", "", body).Code)
	assert.Equal(t, http.StatusUnauthorized, s.json(t, http.MethodPost, "/api/admin/tests", "bad", body).Code)
	assert.Equal(t, http.StatusForbidden, s.json(t, http.MethodPost, "/api/admin/tests", s.userToken, body).Code)
	assert.Equal(t, http.StatusForbidden, s.json(t, http.MethodPost, "/api/admin/tests", s.psyToken, body).Code)
	assert.Equal(t, http.StatusCreated, s.json(t, http.MethodPost, "/api/admin/tests", s.adminToken, body).Code)
}

func TestQuestionLifecycle(t *testing.T) {
	s := newServer(t)

	w := s.json(t, http.MethodPost, "/api/admin/tests", s.adminToken, dto.CreateTestRequest{Name: "raven", DisplayName: "Test 1", Description: "matrices"})
	require.Equal(t, http.StatusCreated, w.Code)
	testID := decode[dto.TestMutationResponse](t, w).Test.ID

	req := multipartRequest(t, http.MethodPost, "/api/admin/questions", map[string]string{
		"test_id":           fmt.Sprint(testID),
		"question_number":   "1",
		"number_of_options": "6",
		"correct_answer":    "4",
	}, []byte("\x89PNG\r\n"))
	w = s.serve(req, s.adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	q := decode[dto.QuestionMutationResponse](t, w).Question
	require.NotNil(t, q.ImagePath)
	require.NotNil(t, q.CorrectAnswer)
	assert.Equal(t, 4, *q.CorrectAnswer)

	blob, err := s.blobs.Open(context.Background(), *q.ImagePath)
	require.NoError(t, err)
	blob.Close()

	req = multipartRequest(t, http.MethodPost, "/api/admin/questions", map[string]string{
		"test_id":           fmt.Sprint(testID),
		"question_number":   "2",
		"number_of_options": "9",
		"correct_answer":    "1",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, s.serve(req, s.adminToken).Code)

	req = multipartRequest(t, http.MethodPut, fmt.Sprintf("/api/admin/questions/%d", q.ID), map[string]string{
		"remove_image": "true",
	}, nil)
	w = s.serve(req, s.adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Nil(t, decode[dto.QuestionMutationResponse](t, w).Question.ImagePath)
	_, err = s.blobs.Open(context.Background(), *q.ImagePath)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	w = s.json(t, http.MethodDelete, fmt.Sprintf("/api/admin/questions/%d", q.ID), s.adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.json(t, http.MethodDelete, fmt.Sprintf("/api/admin/tests/%d", testID), s.adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.json(t, http.MethodDelete, fmt.Sprintf("/api/admin/tests/%d", testID), s.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResultRoutes(t *testing.T) {
	s := newServer(t)

	assert.Equal(t, http.StatusNotFound, s.json(t, http.MethodDelete, "/api/admin/results/test/77", s.adminToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.json(t, http.MethodDelete, "/api/admin/results/77", s.adminToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.json(t, http.MethodDelete, "/api/admin/results/x", s.adminToken, nil).Code)

	w := s.json(t, http.MethodDelete, "/api/admin/results/all", s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), decode[dto.ClearResultsResponse](t, w).Deleted)
}

func TestUserRoutes(t *testing.T) {
	s := newServer(t)

	w := s.json(t, http.MethodGet, "/api/admin/users", s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := decode[dto.UserListResponse](t, w).Users
	require.Len(t, users, 3)

	var userID uint
	for _, u := range users {
		if u.Username == "user" {
			userID = u.ID
		}
	}
	w = s.json(t, http.MethodPut, fmt.Sprintf("/api/admin/users/%d/toggle-status", userID), s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[dto.ToggleUserResponse](t, w).User.IsActive)

	assert.Equal(t, http.StatusUnauthorized, s.json(t, http.MethodGet, "/api/admin/users", s.userToken, nil).Code)
}
