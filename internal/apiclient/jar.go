package apiclient

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
)

// resettableJar is a cookie jar whose contents can be dropped while requests are in flight.
type resettableJar struct {
	mu    sync.RWMutex
	inner *cookiejar.Jar
}

func newResettableJar() *resettableJar {
	j := &resettableJar{}
	j.Reset()
	return j
}

func (j *resettableJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	inner := j.inner
	j.mu.RUnlock()
	inner.SetCookies(u, cookies)
}

func (j *resettableJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	inner := j.inner
	j.mu.RUnlock()
	return inner.Cookies(u)
}

// Reset replaces the jar with an empty one.
func (j *resettableJar) Reset() {
	jar, _ := cookiejar.New(nil) // never fails with nil options
	j.mu.Lock()
	j.inner = jar
	j.mu.Unlock()
}
