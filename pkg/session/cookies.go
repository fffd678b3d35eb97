package session

import (
	"net/http"
	"net/url"
)

// CookieSource exposes read access to the cookies the transport has
// accumulated for the API origin.
type CookieSource interface {
	CookieValue(name string) string
}

// MapCookies is a static CookieSource for tests and simple callers.
type MapCookies map[string]string

func (m MapCookies) CookieValue(name string) string { return m[name] }

// JarCookies reads cookies for one origin out of a shared http.CookieJar.
type JarCookies struct {
	jar    http.CookieJar
	origin *url.URL
}

// NewJarCookies wraps the transport's jar scoped to the given origin URL.
func NewJarCookies(jar http.CookieJar, origin string) (*JarCookies, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, err
	}
	return &JarCookies{jar: jar, origin: u}, nil
}

// CookieValue returns the named cookie's current value for the origin.
func (j *JarCookies) CookieValue(name string) string {
	if j == nil || j.jar == nil || j.origin == nil {
		return ""
	}
	for _, c := range j.jar.Cookies(j.origin) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
