package routes

import (
	"agenda/cmd/internal/service"
	"agenda/cmd/internal/utils/apierror"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

type UserService interface {
	GetUsers(callerID int) ([]*service.UserResponse, apierror.ErrorResponse)
	GetUser(id, callerID int) (*service.UserResponse, apierror.ErrorResponse)
	CreateUser(req *service.CreateUserRequest, callerID int) apierror.ErrorResponse
	UpdateUser(id int, req *service.UpdateUserRequest, callerID int) apierror.ErrorResponse
	DeleteUser(id, callerID int) apierror.ErrorResponse
}

type DefaultUserRoute struct {
	pageFlow
	UserService UserService
}

func NewUserDefault(userService UserService, sessions SessionService) *DefaultUserRoute {
	return &DefaultUserRoute{pageFlow: pageFlow{Sessions: sessions}, UserService: userService}
}

func (u *DefaultUserRoute) GetUsers(c echo.Context) error {
	users, apierr := u.UserService.GetUsers(CurrentIdentity(c).User.ID)
	if apierr != nil {
		return u.fail(c, apierr, adminHome)
	}
	return u.render(c, http.StatusOK, "admin.html", users, nil)
}

func (u *DefaultUserRoute) CreateUser(c echo.Context) error {
	var req service.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return u.fail(c, apierror.MalformedBodyError, adminHome)
	}

	apierr := u.UserService.CreateUser(&req, CurrentIdentity(c).User.ID)
	if apierr != nil {
		return u.fail(c, apierr, adminHome)
	}
	return u.redirectWithFlash(c, adminHome, "User created successfully")
}

func (u *DefaultUserRoute) EditUserForm(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	user, apierr := u.UserService.GetUser(id, CurrentIdentity(c).User.ID)
	if apierr != nil {
		return u.fail(c, apierr, adminHome)
	}
	return u.render(c, http.StatusOK, "editar_usuario.html", user, nil)
}

func (u *DefaultUserRoute) UpdateUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	formPath := fmt.Sprintf("/editar_usuario/%d", id)

	var req service.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return u.fail(c, apierror.MalformedBodyError, formPath)
	}

	apierr := u.UserService.UpdateUser(id, &req, CurrentIdentity(c).User.ID)
	if apierr != nil {
		return u.fail(c, apierr, formPath)
	}
	return u.redirectWithFlash(c, adminHome, "User updated successfully")
}

func (u *DefaultUserRoute) DeleteUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	apierr := u.UserService.DeleteUser(id, CurrentIdentity(c).User.ID)
	if apierr != nil {
		return u.fail(c, apierr, adminHome)
	}
	return u.redirectWithFlash(c, adminHome, "User deleted successfully")
}
