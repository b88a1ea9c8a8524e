package cookie

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetSession(t *testing.T) {
	w := httptest.NewRecorder()
	SetSession(w, "payload.signature", 7*24*time.Hour, true)

	header := w.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(header, "admin_session=payload.signature"))
	assert.Contains(t, header, "Path=/")
	assert.Contains(t, header, "Max-Age=604800")
	assert.Contains(t, header, "HttpOnly")
	assert.Contains(t, header, "Secure")
	assert.Contains(t, header, "SameSite=Lax")
}

func TestSetSessionNotSecureOutsideProduction(t *testing.T) {
	w := httptest.NewRecorder()
	SetSession(w, "v.s", time.Hour, false)
	assert.NotContains(t, w.Header().Get("Set-Cookie"), "Secure")
}

func TestClearSessionMatchesSetAttributes(t *testing.T) {
	for _, secure := range []bool{true, false} {
		set := httptest.NewRecorder()
		SetSession(set, "v.s", time.Hour, secure)
		cleared := httptest.NewRecorder()
		ClearSession(cleared, secure)

		setCookies := set.Result().Cookies()
		clearCookies := cleared.Result().Cookies()
		require.Len(t, setCookies, 1)
		require.Len(t, clearCookies, 1)

		s, c := setCookies[0], clearCookies[0]
		assert.Equal(t, s.Name, c.Name)
		assert.Equal(t, s.Path, c.Path)
		assert.Equal(t, s.SameSite, c.SameSite)
		assert.Equal(t, s.Secure, c.Secure)
		assert.Equal(t, s.HttpOnly, c.HttpOnly)
		assert.Empty(t, c.Value)
		assert.Contains(t, cleared.Header().Get("Set-Cookie"), "Max-Age=0")
	}
}

func TestGetSession(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetSession(r)
	assert.ErrorIs(t, err, http.ErrNoCookie)

	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "abc.def"})
	value, err := GetSession(r)
	require.NoError(t, err)
	assert.Equal(t, "abc.def", value)
}
