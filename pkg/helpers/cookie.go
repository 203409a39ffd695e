package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
	// VisitorCookie identifies an anonymous visitor across public page requests.
	VisitorCookie = "lp_visitor"
)

// Manager writes the service's cookies with a shared domain and security
// policy. All of them are HttpOnly and SameSite=Lax.
type Manager struct {
	Domain string
	Secure bool
}

func NewCookie(domain string, secure bool) *Manager {
	return &Manager{Domain: domain, Secure: secure}
}

func (m *Manager) set(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", m.Domain, m.Secure, true)
}

// SetPair stores an editor's token pair.
func (m *Manager) SetPair(c *gin.Context, access string, aexp time.Time, refresh string, rexp time.Time) {
	m.set(c, AccessCookie, access, maxAgeFrom(aexp))
	m.set(c, RefreshCookie, refresh, maxAgeFrom(rexp))
}

// Clear expires the token pair. The visitor cookie survives sign-out.
func (m *Manager) Clear(c *gin.Context) {
	m.set(c, AccessCookie, "", -1)
	m.set(c, RefreshCookie, "", -1)
}

// SetVisitorID stores the long-lived anonymous visitor id.
func (m *Manager) SetVisitorID(c *gin.Context, visitorID string, exp time.Time) {
	m.set(c, VisitorCookie, visitorID, maxAgeFrom(exp))
}

func maxAgeFrom(exp time.Time) int {
	if sec := int(time.Until(exp).Seconds()); sec > 0 {
		return sec
	}
	return 0
}
