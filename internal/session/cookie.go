package session

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

const DefaultCookieName = "hirehub.sid"

// CookieOptions defines how session cookies are issued.
type CookieOptions struct {
	Name     string
	Path     string
	Domain   string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
}

// normalize applies safe defaults without breaking callers
func (o CookieOptions) normalize() CookieOptions {
	if o.Name == "" {
		o.Name = DefaultCookieName
	}
	if o.Path == "" {
		o.Path = "/"
	}
	if !o.HttpOnly {
		o.HttpOnly = true
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// CookieCodec carries the session ID in an HMAC-signed cookie so a client
// cannot forge or tamper with the identifier.
type CookieCodec struct {
	sc   *securecookie.SecureCookie
	opts CookieOptions
}

// NewCookieCodec signs cookies with secret. maxAge bounds how old a signed
// value may be before it is rejected; zero disables the check.
func NewCookieCodec(secret []byte, maxAge time.Duration, opts CookieOptions) *CookieCodec {
	sc := securecookie.New(secret, nil)
	sc.MaxAge(int(maxAge.Seconds()))
	return &CookieCodec{sc: sc, opts: opts.normalize()}
}

func (c *CookieCodec) Name() string {
	return c.opts.Name
}

// Set issues the session cookie to the client.
func (c *CookieCodec) Set(w http.ResponseWriter, sessionID string, expiresAt time.Time) error {
	encoded, err := c.sc.Encode(c.opts.Name, sessionID)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.opts.Name,
		Value:    encoded,
		Path:     c.opts.Path,
		Domain:   c.opts.Domain,
		Expires:  expiresAt,
		HttpOnly: c.opts.HttpOnly,
		Secure:   c.opts.Secure,
		SameSite: c.opts.SameSite,
	})
	return nil
}

// Read returns the session ID from a request, or false when the cookie is
// missing or its signature does not verify.
func (c *CookieCodec) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.opts.Name)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	var sessionID string
	if err := c.sc.Decode(c.opts.Name, cookie.Value, &sessionID); err != nil {
		return "", false
	}
	return sessionID, sessionID != ""
}

// Clear removes the session cookie from the client.
func (c *CookieCodec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.opts.Name,
		Value:    "",
		Path:     c.opts.Path,
		Domain:   c.opts.Domain,
		MaxAge:   -1,
		HttpOnly: c.opts.HttpOnly,
		Secure:   c.opts.Secure,
		SameSite: c.opts.SameSite,
	})
}
