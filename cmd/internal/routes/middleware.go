package routes

import (
	"agenda/cmd/internal/service"
	"agenda/cmd/internal/utils/apierror"
	"agenda/cmd/internal/view"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

const (
	SessionCookie = "session"

	identityKey = "identity"

	loginPath = "/login"
	adminHome = "/admin"
	userHome  = "/agenda"
)

type SessionService interface {
	Start(userID int) (string, time.Time, apierror.ErrorResponse)
	Resolve(raw string) (*service.Identity, apierror.ErrorResponse)
	AddFlash(sessionID, message string)
	PopFlashes(sessionID string) []string
	End(sessionID string) apierror.ErrorResponse
}

// LoadSession resolves the session cookie, if any, into the identity of
// this request. It never rejects a request; RequireLogin does.
func LoadSession(sessions SessionService, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			identity, apierr := sessions.Resolve(cookie.Value)
			switch {
			case apierr == nil:
				c.Set(identityKey, identity)
			case apierr.Code() == http.StatusInternalServerError:
				return echo.ErrInternalServerError
			default:
				clearSessionCookie(c, secure)
			}
			return next(c)
		}
	}
}

func RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if CurrentIdentity(c) == nil {
			return c.Redirect(http.StatusSeeOther, loginPath)
		}
		return next(c)
	}
}

// AdminOnly sends regular users back to their agenda without a notice.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity := CurrentIdentity(c)
		if identity == nil {
			return c.Redirect(http.StatusSeeOther, loginPath)
		}
		if !identity.User.IsAdmin {
			return c.Redirect(http.StatusSeeOther, userHome)
		}
		return next(c)
	}
}

// UsersOnly sends administrators back to user management without a notice.
func UsersOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity := CurrentIdentity(c)
		if identity == nil {
			return c.Redirect(http.StatusSeeOther, loginPath)
		}
		if identity.User.IsAdmin {
			return c.Redirect(http.StatusSeeOther, adminHome)
		}
		return next(c)
	}
}

func CurrentIdentity(c echo.Context) *service.Identity {
	identity, _ := c.Get(identityKey).(*service.Identity)
	return identity
}

func homeFor(identity *service.Identity) string {
	if identity == nil {
		return loginPath
	}
	if identity.User.IsAdmin {
		return adminHome
	}
	return userHome
}

func setSessionCookie(c echo.Context, value string, expires time.Time, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// pageFlow carries what every HTML handler needs: the session service for
// flash notices and the page model.
type pageFlow struct {
	Sessions SessionService
}

func (p pageFlow) page(c echo.Context, data any) *view.Page {
	page := &view.Page{Data: data}
	if identity := CurrentIdentity(c); identity != nil {
		page.Username = identity.User.Username
		page.IsAdmin = identity.User.IsAdmin
		page.Flashes = p.Sessions.PopFlashes(identity.SessionID)
	}
	return page
}

func (p pageFlow) render(c echo.Context, code int, name string, data any, apierr apierror.ErrorResponse) error {
	page := p.page(c, data)
	if apierr != nil {
		page.Error = apierr.Error()
	}
	return c.Render(code, name, page)
}

func (p pageFlow) flash(c echo.Context, message string) {
	if identity := CurrentIdentity(c); identity != nil {
		p.Sessions.AddFlash(identity.SessionID, message)
	}
}

func (p pageFlow) redirectWithFlash(c echo.Context, url, message string) error {
	p.flash(c, message)
	return c.Redirect(http.StatusSeeOther, url)
}

// fail maps a service error onto the redirect-based error policy:
// not-found and faults are hard failures, a revoked session goes back to
// login, anything else becomes a notice on the fallback page (the
// caller's home for authorization failures).
func (p pageFlow) fail(c echo.Context, apierr apierror.ErrorResponse, fallback string) error {
	switch apierr.Code() {
	case http.StatusNotFound:
		return echo.ErrNotFound
	case http.StatusInternalServerError:
		return echo.ErrInternalServerError
	case http.StatusUnauthorized:
		return c.Redirect(http.StatusSeeOther, loginPath)
	case http.StatusForbidden:
		return p.redirectWithFlash(c, homeFor(CurrentIdentity(c)), apierr.Error())
	}
	return p.redirectWithFlash(c, fallback, apierr.Error())
}

// parseID reads the :id path parameter. Anything that is not a positive
// integer cannot name a record, so it is reported as not found.
func parseID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		log.Debugf("invalid id parameter %q on %s", c.Param("id"), c.Path())
		return 0, echo.ErrNotFound
	}
	return id, nil
}
