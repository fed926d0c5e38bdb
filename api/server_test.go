package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Evergreenies/bidding-application/adapters/mail"
	"github.com/Evergreenies/bidding-application/models"
)

// memStore 是記憶體版的 session 儲存層
type memStore struct {
	mu   sync.Mutex
	data map[string]map[string]string
}

func newMemStore() *memStore {
	return &memStore{data: map[string]map[string]string{}}
}

func (s *memStore) Load(_ context.Context, id string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := map[string]string{}
	for k, v := range s.data[id] {
		copied[k] = v
	}
	return copied, nil
}

func (s *memStore) Save(_ context.Context, id string, data map[string]string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = data
	return nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// fakePictureStore 不真的上傳，只回傳固定的 key
type fakePictureStore struct {
	uploaded int
}

func (f *fakePictureStore) UploadPicture(_ context.Context, _, ext string, _ []byte) (string, error) {
	f.uploaded++
	return fmt.Sprintf("pics/test-%d.%s", f.uploaded, ext), nil
}

func (f *fakePictureStore) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

type fakeEnqueuer struct {
	mu       sync.Mutex
	messages []mail.Message
}

func (f *fakeEnqueuer) Enqueue(msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeEnqueuer) last() (mail.Message, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return mail.Message{}, false
	}
	return f.messages[len(f.messages)-1], true
}

func newTestServer(t *testing.T) (*gin.Engine, *fakeEnqueuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Bid{}))

	enqueuer := &fakeEnqueuer{}
	impl := NewServerWithDependencies(db, newMemStore(), enqueuer, &fakePictureStore{}, ServerConfig{
		Auth: AuthConfig{
			SecretKey:     "test-secret",
			ResetTokenTTL: time.Minute,
		},
		Session: SessionConfig{
			KeyForCookie: "bid-session",
			CookieMaxAge: time.Hour,
			CookieSecure: false,
		},
		PublicBaseURL: "http://bid.test",
	})

	router := gin.New()
	impl.RegisterRoutes(router)
	return router, enqueuer
}

func doJSON(router *gin.Engine, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// signUpAndLogin 註冊並登入一個使用者，回傳登入後的 cookie
func signUpAndLogin(t *testing.T, router *gin.Engine, username, email string) []*http.Cookie {
	t.Helper()
	rec := doJSON(router, http.MethodPost, "/register", gin.H{
		"username":         username,
		"email":            email,
		"password":         "password123",
		"confirm_password": "password123",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(router, http.MethodPost, "/login", gin.H{
		"email":    email,
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return rec.Result().Cookies()
}

// createProduct 以 multipart form 刊登商品，回傳商品 ID
func createProduct(t *testing.T, router *gin.Engine, cookies []*http.Cookie, name string, minimumBid int64) uint {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("name", name))
	require.NoError(t, writer.WriteField("description", "a thing worth bidding on"))
	require.NoError(t, writer.WriteField("category", "misc"))
	require.NoError(t, writer.WriteField("minimum_bid", fmt.Sprintf("%d", minimumBid)))
	require.NoError(t, writer.WriteField("last_date_to_bid", time.Now().Add(72*time.Hour).Format("2006-01-02")))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/product/new", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Product ProductSummary `json:"product"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Product.ID
}

func TestRegisterAndLogin(t *testing.T) {
	router, _ := newTestServer(t)

	t.Run("invalid fields", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/register", gin.H{
			"username":         "x",
			"email":            "not-an-email",
			"password":         "a",
			"confirm_password": "b",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "username")
		assert.Contains(t, rec.Body.String(), "confirm_password")
	})

	cookies := signUpAndLogin(t, router, "alice", "alice@example.com")

	t.Run("duplicate username", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/register", gin.H{
			"username":         "alice",
			"email":            "other@example.com",
			"password":         "password123",
			"confirm_password": "password123",
		}, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
	t.Run("wrong password", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/login", gin.H{
			"email":    "alice@example.com",
			"password": "wrong-password",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
	t.Run("home requires login", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet, "/", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
	t.Run("home with session", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet, "/", nil, cookies)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
	t.Run("logout invalidates session", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/logout", nil, cookies)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(router, http.MethodGet, "/", nil, cookies)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestProductLifecycle(t *testing.T) {
	router, _ := newTestServer(t)

	alice := signUpAndLogin(t, router, "alice", "alice@example.com")
	bob := signUpAndLogin(t, router, "bob", "bob@example.com")

	productID := createProduct(t, router, alice, "Antique clock", 100)

	t.Run("product appears on home", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet, "/", nil, bob)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Antique clock")
	})
	t.Run("detail includes owner and picture url", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet, fmt.Sprintf("/product/%d", productID), nil, bob)
		require.Equal(t, http.StatusOK, rec.Code)
		var detail ProductDetail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
		assert.Equal(t, "alice", detail.Owner)
		assert.Equal(t, "https://cdn.test/default.png", detail.PictureURL)
	})
	t.Run("products by owner", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet, "/user/alice", nil, bob)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Antique clock")

		rec = doJSON(router, http.MethodGet, "/user/nobody", nil, bob)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
	t.Run("only the owner can delete", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/product/%d", productID), nil)
		for _, cookie := range bob {
			req.AddCookie(cookie)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/product/%d", productID), nil)
		for _, cookie := range alice {
			req.AddCookie(cookie)
		}
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec2 := doJSON(router, http.MethodGet, fmt.Sprintf("/product/%d", productID), nil, alice)
		assert.Equal(t, http.StatusNotFound, rec2.Code)
	})
}

func TestBidFlow(t *testing.T) {
	router, _ := newTestServer(t)

	alice := signUpAndLogin(t, router, "alice", "alice@example.com")
	bob := signUpAndLogin(t, router, "bob", "bob@example.com")

	productID := createProduct(t, router, alice, "Antique clock", 100)
	bidPath := fmt.Sprintf("/bid/product/%d", productID)

	t.Run("no bid yet", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet, bidPath, nil, bob)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"bid":null}`, rec.Body.String())
	})
	t.Run("bid equal to minimum is rejected", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, bidPath, gin.H{"amount": 100}, bob)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("bid above minimum is accepted", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, bidPath, gin.H{"amount": 150, "note": "call me"}, bob)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"bidder":"bob"`)
	})
	t.Run("revised bid replaces the old one", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, bidPath, gin.H{"amount": 300}, bob)
		require.Equal(t, http.StatusOK, rec.Code)

		detail := doJSON(router, http.MethodGet, fmt.Sprintf("/product/%d", productID), nil, bob)
		require.Equal(t, http.StatusOK, detail.Code)
		var got ProductDetail
		require.NoError(t, json.Unmarshal(detail.Body.Bytes(), &got))
		require.Len(t, got.Bids, 1)
		assert.EqualValues(t, 300, got.Bids[0].Amount)
		require.NotNil(t, got.LeadingBid)
		assert.EqualValues(t, 300, *got.LeadingBid)
	})
	t.Run("unknown product", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/bid/product/9999", gin.H{"amount": 150}, bob)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPasswordResetFlow(t *testing.T) {
	router, enqueuer := newTestServer(t)

	signUpAndLogin(t, router, "alice", "alice@example.com")

	t.Run("unknown email", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/reset_password", gin.H{"email": "nobody@example.com"}, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	rec := doJSON(router, http.MethodPost, "/reset_password", gin.H{"email": "alice@example.com"}, nil)
	require.Equal(t, http.StatusAccepted, rec.Code)

	msg, ok := enqueuer.last()
	require.True(t, ok)
	require.Contains(t, msg.Body, "http://bid.test/reset_password/")
	start := strings.Index(msg.Body, "/reset_password/") + len("/reset_password/")
	token := strings.Fields(msg.Body[start:])[0]

	t.Run("invalid token", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/reset_password/not-a-token", gin.H{
			"password":         "new-password",
			"confirm_password": "new-password",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("valid token updates the password", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/reset_password/"+token, gin.H{
			"password":         "new-password",
			"confirm_password": "new-password",
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		login := doJSON(router, http.MethodPost, "/login", gin.H{
			"email":    "alice@example.com",
			"password": "new-password",
		}, nil)
		assert.Equal(t, http.StatusOK, login.Code)

		old := doJSON(router, http.MethodPost, "/login", gin.H{
			"email":    "alice@example.com",
			"password": "password123",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, old.Code)
	})
}
