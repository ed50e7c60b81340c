// Package clientprefs keeps per-browser board preferences (the remembered
// active project and the user's custom project ordering) in a signed
// cookie. These are client-local state only: reordering the sidebar never
// writes to Mongo, and each browser keeps its own ordering. Single writer
// (the owning browser), read and written synchronously with the request.
package clientprefs

import (
	"net/http"

	"github.com/gorilla/securecookie"
)

// CookieName holds the signed preferences payload.
const CookieName = "board_prefs"

// Prefs carries the remembered active project and the custom project
// ordering.
type Prefs struct {
	ActiveProjectID string   `json:"activeProjectId,omitempty"`
	ProjectOrder    []string `json:"projectOrder,omitempty"`
}

// Codec signs and encodes Prefs into the preferences cookie.
type Codec struct {
	sc     *securecookie.SecureCookie
	secure bool
}

// NewCodec builds a codec from the hash key. JSON encoding keeps the cookie
// readable in devtools; the signature prevents tampering.
func NewCodec(hashKey []byte, secure bool) *Codec {
	sc := securecookie.New(hashKey, nil)
	sc.SetSerializer(securecookie.JSONEncoder{})
	return &Codec{sc: sc, secure: secure}
}

// Read decodes the preferences cookie. A missing or invalid cookie yields
// empty prefs, never an error; preferences are best-effort.
func (c *Codec) Read(r *http.Request) Prefs {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Prefs{}
	}
	var p Prefs
	if err := c.sc.Decode(CookieName, cookie.Value, &p); err != nil {
		return Prefs{}
	}
	return p
}

// Write encodes and sets the preferences cookie.
func (c *Codec) Write(w http.ResponseWriter, p Prefs) error {
	encoded, err := c.sc.Encode(CookieName, p)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    encoded,
		Path:     "/",
		Secure:   c.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60 * 60 * 24 * 365,
	})
	return nil
}

// Clear drops the preferences cookie (sign-out).
func (c *Codec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}
