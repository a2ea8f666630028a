package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Knight069/ecommerce-microservice/internal/models"
)

func newContext(cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == CookieName {
			return ck
		}
	}
	return nil
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := t.Context()

	s := &Session{SID: "abc", APIKey: "key"}
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, "key", got.APIKey)

	// stored copy is isolated from later mutation
	s.APIKey = "changed"
	got, err = store.Get(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, "key", got.APIKey)

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Get(ctx, "abc")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestManagerIssueAndLoad(t *testing.T) {
	m := NewManager(NewMemoryStore(), []byte("secret"))

	c, rec := newContext()
	s, err := m.Issue(c)
	require.NoError(t, err)
	require.NotEmpty(t, s.SID)

	ck := sessionCookie(rec)
	require.NotNil(t, ck)
	require.True(t, ck.HttpOnly)

	s.APIKey = "key"
	s.User = &models.User{ID: 1, Username: "alice"}
	require.NoError(t, m.Save(c, s))

	c2, _ := newContext(&http.Cookie{Name: CookieName, Value: ck.Value})
	loaded, err := m.Load(c2)
	require.NoError(t, err)
	require.Equal(t, s.SID, loaded.SID)
	require.Equal(t, "key", loaded.APIKey)
	require.Equal(t, "alice", loaded.User.Username)
	require.True(t, loaded.LoggedIn())
}

func TestManagerRejectsTamperedCookie(t *testing.T) {
	m := NewManager(NewMemoryStore(), []byte("secret"))

	c, rec := newContext()
	_, err := m.Issue(c)
	require.NoError(t, err)
	ck := sessionCookie(rec)

	other := NewManager(m.Store, []byte("other-secret"))
	c2, _ := newContext(&http.Cookie{Name: CookieName, Value: ck.Value})
	_, err = other.Load(c2)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestManagerLoadWithoutCookie(t *testing.T) {
	m := NewManager(NewMemoryStore(), []byte("secret"))

	c, _ := newContext()
	_, err := m.Load(c)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestManagerDestroy(t *testing.T) {
	m := NewManager(NewMemoryStore(), []byte("secret"))

	c, rec := newContext()
	s, err := m.Issue(c)
	require.NoError(t, err)
	ck := sessionCookie(rec)

	c2, rec2 := newContext(&http.Cookie{Name: CookieName, Value: ck.Value})
	require.NoError(t, m.Destroy(c2, s))

	dropped := sessionCookie(rec2)
	require.NotNil(t, dropped)
	require.Equal(t, -1, dropped.MaxAge)

	c3, _ := newContext(&http.Cookie{Name: CookieName, Value: ck.Value})
	_, err = m.Load(c3)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFlashesDrainOnce(t *testing.T) {
	s := &Session{SID: "abc"}
	s.AddFlash("hello", "success")
	s.AddFlash("oops", "error")

	flashes := s.PopFlashes()
	require.Len(t, flashes, 2)
	require.Equal(t, "hello", flashes[0].Message)
	require.Empty(t, s.PopFlashes())
}
