// Package flash carries one-shot status messages across a redirect in a
// signed cookie.
package flash

import (
	"net/http"
	"sync"

	"github.com/gorilla/securecookie"
)

const cookieName = "deskhub-flash"

// Kinds
const (
	Success = "success"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Message is one queued notice.
type Message struct {
	Kind string
	Text string
}

var (
	mu     sync.RWMutex
	codec  *securecookie.SecureCookie
	secure bool
)

// Init configures the signing key. Call once at startup; until then Add is a
// no-op and Pop returns nothing.
func Init(hashKey []byte, secureCookie bool) {
	mu.Lock()
	defer mu.Unlock()
	codec = securecookie.New(hashKey, nil).MaxAge(300)
	secure = secureCookie
}

func current() (*securecookie.SecureCookie, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return codec, secure
}

// Add queues a message for the next page render.
func Add(w http.ResponseWriter, r *http.Request, kind, text string) {
	sc, sec := current()
	if sc == nil {
		return
	}
	msgs := read(sc, r)
	msgs = append(msgs, Message{Kind: kind, Text: text})
	write(w, sc, sec, msgs)
}

// Pop returns the queued messages and clears the cookie.
func Pop(w http.ResponseWriter, r *http.Request) []Message {
	sc, sec := current()
	if sc == nil {
		return nil
	}
	msgs := read(sc, r)
	if len(msgs) == 0 {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sec,
		SameSite: http.SameSiteLaxMode,
	})
	return msgs
}

func read(sc *securecookie.SecureCookie, r *http.Request) []Message {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return nil
	}
	var msgs []Message
	if err := sc.Decode(cookieName, c.Value, &msgs); err != nil {
		return nil
	}
	return msgs
}

func write(w http.ResponseWriter, sc *securecookie.SecureCookie, sec bool, msgs []Message) {
	v, err := sc.Encode(cookieName, msgs)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    v,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   sec,
		SameSite: http.SameSiteLaxMode,
	})
}
