// Package sessions wraps Fiber's server-side session store behind the small
// surface the auth handlers need: issue a session for a user id, resolve the
// current one, destroy it.
package sessions

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
)

const (
	// CookieName carries only the opaque session token, never user data.
	CookieName = "sekolah_session"

	// Sessions expire 12 hours after login regardless of activity.
	sessionTTL = 12 * time.Hour

	// Secrets shorter than this materially weaken token-forgery
	// resistance.
	minSecretLen = 16

	userIDKey = "user_id"
)

// Manager issues and resolves cookie-backed server-side sessions. The cookie
// is HTTP-only and SameSite=Lax; in production it is additionally marked
// Secure.
type Manager struct {
	store      *session.Store
	weakSecret bool
}

// NewManager builds a session manager. A missing or short secret does not
// prevent startup (local development must still work) but is warned about
// here and again every time a session is issued.
func NewManager(secret string, production bool) *Manager {
	weak := len(secret) < minSecretLen
	if weak {
		log.Println("[security] WARNING: SESSION_SECRET is not set or too short. Set a long random SESSION_SECRET in the environment.")
	}
	if !production {
		log.Println("[security] development mode: session cookie is not marked Secure")
	}

	store := session.New(session.Config{
		Expiration:     sessionTTL,
		KeyLookup:      "cookie:" + CookieName,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   production,
		KeyGenerator:   signedTokenGenerator([]byte(secret)),
	})
	return &Manager{store: store, weakSecret: weak}
}

// signedTokenGenerator produces session tokens of the form
// "<uuid>.<hmac-sha256(uuid, secret)>". The store only honors tokens it has
// itself stored, so the random UUID alone already resists guessing; the
// signature binds tokens to the configured secret on top of that.
func signedTokenGenerator(secret []byte) func() string {
	return func() string {
		id := uuid.New().String()
		mac := hmac.New(sha256.New, secret)
		mac.Write([]byte(id))
		return id + "." + hex.EncodeToString(mac.Sum(nil))
	}
}

// Issue binds a fresh session to userID and sets the cookie on the response.
func (m *Manager) Issue(c *fiber.Ctx, userID string) error {
	if m.weakSecret {
		log.Println("[security] WARNING: issuing session under a weak or empty SESSION_SECRET")
	}
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	// Drop any state left from a previous login on this cookie.
	if !sess.Fresh() {
		if err := sess.Regenerate(); err != nil {
			return err
		}
	}
	sess.Set(userIDKey, userID)
	return sess.Save()
}

// UserID returns the user id bound to the request's session, or "" when the
// request carries no valid session. Expired and destroyed sessions resolve
// to "".
func (m *Manager) UserID(c *fiber.Ctx) string {
	sess, err := m.store.Get(c)
	if err != nil {
		return ""
	}
	if id, ok := sess.Get(userIDKey).(string); ok {
		return id
	}
	return ""
}

// Destroy removes the server-side session record and expires the cookie.
// The old token is unusable immediately even if the cookie value is
// replayed. Destroying an absent session is not an error.
func (m *Manager) Destroy(c *fiber.Ctx) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}
