package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karen-colon/b3-backend-social-net/internal/handler"
	"github.com/karen-colon/b3-backend-social-net/internal/model"
	"github.com/karen-colon/b3-backend-social-net/internal/service"
	"github.com/karen-colon/b3-backend-social-net/internal/testutil"
)

const testSecret = "router-test-secret-with-32-characters!"

type countingStore struct {
	mu   sync.Mutex
	puts int
}

func (c *countingStore) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	_, _ = io.Copy(io.Discard, params.Body)
	c.mu.Lock()
	c.puts++
	c.mu.Unlock()
	return &s3.PutObjectOutput{}, nil
}

type testApp struct {
	router chi.Router
	store  *testutil.Store
	media  *countingStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	store := testutil.NewStore()
	userRepo := store.Users()
	followRepo := store.Follows()
	publicationRepo := store.Publications()
	replyRepo := store.Replies()

	tokens, err := service.NewTokenService(testSecret, 7*24*time.Hour)
	require.NoError(t, err)

	objects := &countingStore{}
	media := service.NewMediaServiceWithStore(objects, "media", "https://cdn.test")

	userService := service.NewUserService(userRepo, "default_user.png")
	followService := service.NewFollowService(followRepo, userRepo, publicationRepo, nil)
	publicationService := service.NewPublicationService(publicationRepo, followService, nil)
	replyService := service.NewReplyService(replyRepo, publicationRepo, userRepo, nil)

	router := NewRouter(RouterConfig{
		UserHandler:        handler.NewUserHandler(userService, followService, tokens, media),
		PublicationHandler: handler.NewPublicationHandler(publicationService, media),
		FollowHandler:      handler.NewFollowHandler(followService),
		ReplyHandler:       handler.NewReplyHandler(replyService),
		TokenVerifier:      tokens,
		AllowedOrigins:     []string{"*"},
	})

	return &testApp{router: router, store: store, media: objects}
}

type envelope map[string]interface{}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func (a *testApp) register(t *testing.T, nick string) {
	t.Helper()
	status, env := a.do(t, http.MethodPost, "/api/user/register", "", map[string]string{
		"name":      strings.ToUpper(nick[:1]) + nick[1:],
		"last_name": "Tester",
		"nick":      nick,
		"email":     nick + "@example.com",
		"password":  "pw-" + nick,
	})
	require.Equal(t, http.StatusCreated, status, "register %s: %v", nick, env)
}

func (a *testApp) login(t *testing.T, nick string) (string, int64) {
	t.Helper()
	status, env := a.do(t, http.MethodPost, "/api/user/login", "", map[string]string{
		"email":    nick + "@example.com",
		"password": "pw-" + nick,
	})
	require.Equal(t, http.StatusOK, status, "login %s: %v", nick, env)
	user := env["user"].(map[string]interface{})
	return env["token"].(string), int64(user["id"].(float64))
}

func (a *testApp) upload(t *testing.T, path, token string, data []byte) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="photo.jpg"`, model.UploadFormField))
	h.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec.Code, env
}

func TestRouter_Health(t *testing.T) {
	app := newTestApp(t)
	status, env := app.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", env["status"])
}

func TestRouter_RegisterLoginPublishShow(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice")

	token, aliceID := app.login(t, "alice")
	assert.NotEmpty(t, token)

	status, env := app.do(t, http.MethodPost, "/api/publication/new-publication", token, map[string]string{"text": "hello"})
	require.Equal(t, http.StatusOK, status, env)
	assert.Equal(t, "success", env["status"])
	publication := env["publication"].(map[string]interface{})
	assert.Equal(t, float64(aliceID), publication["user_id"])

	path := fmt.Sprintf("/api/publication/show-publication/%d", int64(publication["id"].(float64)))
	status, env = app.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, status)
	shown := env["publication"].(map[string]interface{})
	assert.Equal(t, "hello", shown["text"])
	assert.Equal(t, "alice", shown["user"].(map[string]interface{})["nick"])
}

func TestRouter_RegisterValidationAndDuplicates(t *testing.T) {
	app := newTestApp(t)

	status, env := app.do(t, http.MethodPost, "/api/user/register", "", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "error", env["status"])

	app.register(t, "alice")

	// same email with different case, different nick
	status, _ = app.do(t, http.MethodPost, "/api/user/register", "", map[string]string{
		"name": "A", "last_name": "B", "nick": "other", "email": "ALICE@example.com", "password": "pw",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, env = app.do(t, http.MethodGet, "/api/user/list", mustLogin(t, app, "alice"), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), env["total"])
}

func mustLogin(t *testing.T, app *testApp, nick string) string {
	token, _ := app.login(t, nick)
	return token
}

func TestRouter_LoginFailures(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice")

	status, _ := app.do(t, http.MethodPost, "/api/user/login", "", map[string]string{"email": "nobody@example.com", "password": "x"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = app.do(t, http.MethodPost, "/api/user/login", "", map[string]string{"email": "alice@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRouter_AuthFailures(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice")
	_, aliceID := app.login(t, "alice")

	status, env := app.do(t, http.MethodGet, "/api/user/counters", "", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, model.CodeMissingAuth, env["code"])

	status, env = app.do(t, http.MethodGet, "/api/user/counters", "Bearer not-a-token", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, model.CodeInvalidToken, env["code"])

	expiredIssuer, err := service.NewTokenService(testSecret, -time.Hour)
	require.NoError(t, err)
	expired, err := expiredIssuer.Issue(&model.User{ID: aliceID, Role: model.RoleUser})
	require.NoError(t, err)

	status, env = app.do(t, http.MethodGet, "/api/user/counters", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, model.CodeExpiredToken, env["code"])
}

func TestRouter_FollowThenFeed(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice")
	app.register(t, "bob")
	aliceToken, _ := app.login(t, "alice")
	bobToken, bobID := app.login(t, "bob")

	status, _ := app.do(t, http.MethodPost, "/api/publication/new-publication", bobToken, map[string]string{"text": "first from bob"})
	require.Equal(t, http.StatusOK, status)
	status, _ = app.do(t, http.MethodPost, "/api/publication/new-publication", bobToken, map[string]string{"text": "second from bob"})
	require.Equal(t, http.StatusOK, status)

	// alice follows nobody yet
	status, _ = app.do(t, http.MethodGet, "/api/publication/feed", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env := app.do(t, http.MethodPost, "/api/follow/follow", aliceToken, map[string]int64{"followed_user": bobID})
	require.Equal(t, http.StatusOK, status, env)
	follow := env["follow"].(map[string]interface{})
	assert.Equal(t, "Bob", follow["followed_user_info"].(map[string]interface{})["name"])

	status, _ = app.do(t, http.MethodPost, "/api/follow/follow", aliceToken, map[string]int64{"followed_user": bobID})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = app.do(t, http.MethodGet, "/api/publication/feed", aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	publications := env["publications"].([]interface{})
	require.Len(t, publications, 2)
	assert.Equal(t, "second from bob", publications[0].(map[string]interface{})["text"])
	assert.Equal(t, float64(2), env["total"])

	status, env = app.do(t, http.MethodGet, fmt.Sprintf("/api/user/profile/%d", bobID), aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, env["follow_info"].(map[string]interface{})["following"])
	assert.NotContains(t, env["user"], "email")
	assert.NotContains(t, env["user"], "password")

	status, env = app.do(t, http.MethodGet, "/api/follow/following", aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, env["follows"].([]interface{}), 1)

	status, _ = app.do(t, http.MethodDelete, fmt.Sprintf("/api/follow/unfollow/%d", bobID), aliceToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = app.do(t, http.MethodDelete, fmt.Sprintf("/api/follow/unfollow/%d", bobID), aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRouter_DeleteIsOwnerOnly(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice")
	app.register(t, "bob")
	aliceToken, _ := app.login(t, "alice")
	bobToken, _ := app.login(t, "bob")

	_, env := app.do(t, http.MethodPost, "/api/publication/new-publication", aliceToken, map[string]string{"text": "mine"})
	id := int64(env["publication"].(map[string]interface{})["id"].(float64))

	notOwnerStatus, notOwner := app.do(t, http.MethodDelete, fmt.Sprintf("/api/publication/delete-publication/%d", id), bobToken, nil)
	missingStatus, missing := app.do(t, http.MethodDelete, "/api/publication/delete-publication/9999", bobToken, nil)

	assert.Equal(t, http.StatusNotFound, notOwnerStatus)
	assert.Equal(t, missingStatus, notOwnerStatus)
	assert.Equal(t, missing, notOwner)

	status, _ := app.do(t, http.MethodDelete, fmt.Sprintf("/api/publication/delete-publication/%d", id), aliceToken, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestRouter_RepliesBumpCount(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice")
	token, _ := app.login(t, "alice")

	_, env := app.do(t, http.MethodPost, "/api/publication/new-publication", token, map[string]string{"text": "post"})
	id := int64(env["publication"].(map[string]interface{})["id"].(float64))

	status, env := app.do(t, http.MethodPost, "/api/publication/add-reply", token, map[string]interface{}{"publication_id": id, "text": "nice"})
	require.Equal(t, http.StatusOK, status, env)
	assert.Equal(t, "alice", env["reply"].(map[string]interface{})["user"].(map[string]interface{})["nick"])

	status, _ = app.do(t, http.MethodPost, "/api/publication/add-reply", token, map[string]interface{}{"publication_id": 9999, "text": "nice"})
	assert.Equal(t, http.StatusNotFound, status)

	_, env = app.do(t, http.MethodGet, fmt.Sprintf("/api/publication/show-publication/%d", id), token, nil)
	assert.Equal(t, float64(1), env["publication"].(map[string]interface{})["reply_count"])

	status, env = app.do(t, http.MethodGet, fmt.Sprintf("/api/publication/replies/%d", id), token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, env["replies"].([]interface{}), 1)
}

func TestRouter_UploadLimits(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice")
	token, _ := app.login(t, "alice")

	_, env := app.do(t, http.MethodPost, "/api/publication/new-publication", token, map[string]string{"text": "with media"})
	id := int64(env["publication"].(map[string]interface{})["id"].(float64))
	path := fmt.Sprintf("/api/publication/upload-media/%d", id)

	status, env := app.upload(t, path, token, bytes.Repeat([]byte{0xff}, model.MaxUploadSizeBytes+1))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, model.CodeFileTooLarge, env["code"])

	status, _ = app.upload(t, path, token, bytes.Repeat([]byte{0xff}, 2*model.MaxUploadSizeBytes))
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = app.upload(t, "/api/publication/upload-media/9999", token, []byte{0xff, 0xd8, 0xff})
	assert.Equal(t, http.StatusNotFound, status)

	assert.Zero(t, app.media.puts, "nothing may reach object storage")
}

func TestRouter_MediaRedirect(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice")
	token, aliceID := app.login(t, "alice")

	_, env := app.do(t, http.MethodPost, "/api/publication/new-publication", token, map[string]string{"text": "no media"})
	id := int64(env["publication"].(map[string]interface{})["id"].(float64))

	status, _ := app.do(t, http.MethodGet, fmt.Sprintf("/api/publication/media/%d", id), "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	// The relative default placeholder is not served here.
	status, env = app.do(t, http.MethodGet, fmt.Sprintf("/api/user/avatar/%d", aliceID), "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, model.ErrImageNotFound.Error(), env["message"])

	status, _ = app.do(t, http.MethodGet, "/api/user/avatar/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	for x := 0; x < 400; x++ {
		img.Set(x, x%300, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	return buf.Bytes()
}

func TestRouter_RegisterRejectsBlankFields(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
	}{
		{name: "blank name", field: "name", value: "   "},
		{name: "blank last name", field: "last_name", value: "\t"},
		{name: "blank nick", field: "nick", value: "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			body := map[string]string{
				"name": "Alice", "last_name": "Liddell", "nick": "alice",
				"email": "alice@example.com", "password": "pw",
			}
			body[tt.field] = tt.value

			status, env := app.do(t, http.MethodPost, "/api/user/register", "", body)

			assert.Equal(t, http.StatusBadRequest, status)
			assert.Contains(t, env["details"], tt.field)

			// nothing was stored, so the email is still free
			body[tt.field] = "filled"
			status, _ = app.do(t, http.MethodPost, "/api/user/register", "", body)
			assert.Equal(t, http.StatusCreated, status)
		})
	}
}

func TestRouter_UpdateProfile(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice")
	app.register(t, "bob")
	token, aliceID := app.login(t, "alice")

	t.Run("token fields cannot raise the role", func(t *testing.T) {
		status, env := app.do(t, http.MethodPut, "/api/user/update", token, map[string]interface{}{
			"role": model.RoleAdmin,
			"iat":  1,
			"exp":  9,
			"bio":  "curious",
		})
		require.Equal(t, http.StatusOK, status, env)
		user := env["user"].(map[string]interface{})
		assert.Equal(t, model.RoleUser, user["role"])
		assert.Equal(t, "curious", user["bio"])

		stored, err := app.store.Users().GetByID(context.Background(), aliceID)
		require.NoError(t, err)
		assert.Equal(t, model.RoleUser, stored.Role)

		// the old token still works and fresh logins carry the stored role
		status, _ = app.do(t, http.MethodGet, "/api/user/counters", token, nil)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("blank values are rejected", func(t *testing.T) {
		for _, body := range []map[string]string{
			{"name": "   "},
			{"nick": ""},
			{"email": ""},
		} {
			status, env := app.do(t, http.MethodPut, "/api/user/update", token, body)
			assert.Equal(t, http.StatusBadRequest, status, "body %v: %v", body, env)
		}

		stored, err := app.store.Users().GetByID(context.Background(), aliceID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", stored.Name)
		assert.Equal(t, "alice", stored.Nick)
	})

	t.Run("identity collisions are rejected", func(t *testing.T) {
		status, _ := app.do(t, http.MethodPut, "/api/user/update", token, map[string]string{"nick": "bob"})
		assert.Equal(t, http.StatusBadRequest, status)

		status, _ = app.do(t, http.MethodPut, "/api/user/update", token, map[string]string{"email": "BOB@example.com"})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("own nick and trimmed name are accepted", func(t *testing.T) {
		status, env := app.do(t, http.MethodPut, "/api/user/update", token, map[string]string{"nick": "alice", "name": "  Al "})
		require.Equal(t, http.StatusOK, status, env)
		assert.Equal(t, "Al", env["user"].(map[string]interface{})["name"])
	})
}

func TestRouter_UploadAvatarThenRedirect(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice")
	token, aliceID := app.login(t, "alice")

	status, env := app.upload(t, "/api/user/upload-avatar", token, jpegBytes(t))
	require.Equal(t, http.StatusOK, status, env)
	file := env["file"].(string)
	assert.True(t, strings.HasPrefix(file, "https://cdn.test/avatars/avatar-"), file)
	assert.Equal(t, file, env["user"].(map[string]interface{})["image"])
	assert.Equal(t, 1, app.media.puts)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/user/avatar/%d", aliceID), nil)
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, file, rec.Header().Get("Location"))

	status, env = app.upload(t, "/api/user/upload-avatar", token, []byte("plain text, not an image"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, model.CodeInvalidImageType, env["code"])
	assert.Equal(t, 1, app.media.puts)
}

func TestRouter_PublicationsByUser(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice")
	app.register(t, "bob")
	aliceToken, aliceID := app.login(t, "alice")
	_, bobID := app.login(t, "bob")

	for _, text := range []string{"one", "two", "three"} {
		status, _ := app.do(t, http.MethodPost, "/api/publication/new-publication", aliceToken, map[string]string{"text": text})
		require.Equal(t, http.StatusOK, status)
	}

	status, env := app.do(t, http.MethodGet, fmt.Sprintf("/api/publication/publications-user/%d", aliceID), aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	publications := env["publications"].([]interface{})
	require.Len(t, publications, 3)
	assert.Equal(t, "three", publications[0].(map[string]interface{})["text"])
	assert.Equal(t, float64(3), env["total"])

	status, env = app.do(t, http.MethodGet, fmt.Sprintf("/api/publication/publications-user/%d/2?limit=2", aliceID), aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, env["publications"].([]interface{}), 1)
	assert.Equal(t, float64(2), env["pages"])

	status, _ = app.do(t, http.MethodGet, fmt.Sprintf("/api/publication/publications-user/%d/3?limit=2", aliceID), aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = app.do(t, http.MethodGet, fmt.Sprintf("/api/publication/publications-user/%d", bobID), aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = app.do(t, http.MethodGet, fmt.Sprintf("/api/publication/publications-user/%d/0", aliceID), aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
