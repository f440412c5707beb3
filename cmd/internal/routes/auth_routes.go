package routes

import (
	"agenda/cmd/internal/domain/entity"
	"agenda/cmd/internal/service"
	"agenda/cmd/internal/utils/apierror"
	"net/http"

	"github.com/labstack/echo/v4"
)

type AuthService interface {
	Authenticate(req *service.LoginRequest) (*entity.User, apierror.ErrorResponse)
	ChangePassword(req *service.ChangePasswordRequest, callerID int) apierror.ErrorResponse
}

type DefaultAuthRoute struct {
	pageFlow
	AuthService   AuthService
	SecureCookies bool
}

func NewAuthDefault(authService AuthService, sessions SessionService, secureCookies bool) *DefaultAuthRoute {
	return &DefaultAuthRoute{
		pageFlow:      pageFlow{Sessions: sessions},
		AuthService:   authService,
		SecureCookies: secureCookies,
	}
}

// Index routes the caller to the home of its role, or to login.
func (a *DefaultAuthRoute) Index(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, homeFor(CurrentIdentity(c)))
}

func (a *DefaultAuthRoute) LoginForm(c echo.Context) error {
	return a.render(c, http.StatusOK, "login.html", nil, nil)
}

func (a *DefaultAuthRoute) Login(c echo.Context) error {
	var req service.LoginRequest
	if err := c.Bind(&req); err != nil {
		return a.render(c, http.StatusBadRequest, "login.html", nil, apierror.MalformedBodyError)
	}

	user, apierr := a.AuthService.Authenticate(&req)
	if apierr != nil {
		if apierr.Code() == http.StatusInternalServerError {
			return echo.ErrInternalServerError
		}
		return a.render(c, apierr.Code(), "login.html", nil, apierr)
	}

	// Never carry a previous session over to a new login.
	if previous := CurrentIdentity(c); previous != nil {
		_ = a.Sessions.End(previous.SessionID)
	}

	raw, expires, apierr := a.Sessions.Start(user.ID)
	if apierr != nil {
		return echo.ErrInternalServerError
	}
	setSessionCookie(c, raw, expires, a.SecureCookies)

	return c.Redirect(http.StatusSeeOther, homeFor(&service.Identity{User: user}))
}

// Logout drops the session, pending notices included.
func (a *DefaultAuthRoute) Logout(c echo.Context) error {
	if identity := CurrentIdentity(c); identity != nil {
		if apierr := a.Sessions.End(identity.SessionID); apierr != nil {
			return echo.ErrInternalServerError
		}
	}
	clearSessionCookie(c, a.SecureCookies)
	return c.Redirect(http.StatusSeeOther, loginPath)
}

func (a *DefaultAuthRoute) PasswordForm(c echo.Context) error {
	return a.render(c, http.StatusOK, "alterar_senha.html", nil, nil)
}

func (a *DefaultAuthRoute) ChangePassword(c echo.Context) error {
	identity := CurrentIdentity(c)

	var req service.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return a.render(c, http.StatusBadRequest, "alterar_senha.html", nil, apierror.MalformedBodyError)
	}

	apierr := a.AuthService.ChangePassword(&req, identity.User.ID)
	if apierr != nil {
		switch apierr.Code() {
		case http.StatusInternalServerError:
			return echo.ErrInternalServerError
		case http.StatusUnauthorized:
			return c.Redirect(http.StatusSeeOther, loginPath)
		}
		return a.render(c, apierr.Code(), "alterar_senha.html", nil, apierr)
	}

	return a.redirectWithFlash(c, homeFor(identity), "Password changed successfully")
}
