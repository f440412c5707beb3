package routes

import (
	"agenda/cmd/internal/service"
	"agenda/cmd/internal/utils/apierror"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

type AppointmentService interface {
	GetAgenda(callerID int) (*service.Agenda, apierror.ErrorResponse)
	GetUpcoming(callerID int) ([]*service.AppointmentResponse, apierror.ErrorResponse)
	Search(req *service.SearchRequest, callerID int) ([]*service.AppointmentResponse, apierror.ErrorResponse)
	GetAppointment(id, callerID int) (*service.AppointmentResponse, apierror.ErrorResponse)
	CreateAppointment(req *service.AppointmentRequest, callerID int) (*service.AppointmentResponse, apierror.ErrorResponse)
	UpdateAppointment(id int, req *service.AppointmentRequest, callerID int) apierror.ErrorResponse
	DeleteAppointment(id, callerID int) apierror.ErrorResponse
}

type DefaultAppointmentRoute struct {
	pageFlow
	AppointmentService AppointmentService
}

func NewAppointmentDefault(apptService AppointmentService, sessions SessionService) *DefaultAppointmentRoute {
	return &DefaultAppointmentRoute{pageFlow: pageFlow{Sessions: sessions}, AppointmentService: apptService}
}

func (a *DefaultAppointmentRoute) GetAgenda(c echo.Context) error {
	agenda, apierr := a.AppointmentService.GetAgenda(CurrentIdentity(c).User.ID)
	if apierr != nil {
		return a.fail(c, apierr, loginPath)
	}
	return a.render(c, http.StatusOK, "agenda.html", agenda, nil)
}

func (a *DefaultAppointmentRoute) GetUpcoming(c echo.Context) error {
	appts, apierr := a.AppointmentService.GetUpcoming(CurrentIdentity(c).User.ID)
	if apierr != nil {
		return a.fail(c, apierr, userHome)
	}
	return c.JSON(http.StatusOK, appts)
}

// Search answers with JSON; a malformed date sends the caller back to the
// agenda with a notice instead.
func (a *DefaultAppointmentRoute) Search(c echo.Context) error {
	var req service.SearchRequest
	if err := c.Bind(&req); err != nil {
		return a.fail(c, apierror.InvalidDateError, userHome)
	}

	appts, apierr := a.AppointmentService.Search(&req, CurrentIdentity(c).User.ID)
	if apierr != nil {
		return a.fail(c, apierr, userHome)
	}
	return c.JSON(http.StatusOK, appts)
}

func (a *DefaultAppointmentRoute) CreateForm(c echo.Context) error {
	return a.render(c, http.StatusOK, "compromisso_form.html", nil, nil)
}

func (a *DefaultAppointmentRoute) CreateAppointment(c echo.Context) error {
	var req service.AppointmentRequest
	if err := c.Bind(&req); err != nil {
		return a.fail(c, apierror.MalformedBodyError, "/criar_compromisso")
	}

	_, apierr := a.AppointmentService.CreateAppointment(&req, CurrentIdentity(c).User.ID)
	if apierr != nil {
		return a.fail(c, apierr, "/criar_compromisso")
	}
	return a.redirectWithFlash(c, userHome, "Appointment created successfully")
}

func (a *DefaultAppointmentRoute) EditForm(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	appt, apierr := a.AppointmentService.GetAppointment(id, CurrentIdentity(c).User.ID)
	if apierr != nil {
		return a.fail(c, apierr, userHome)
	}
	return a.render(c, http.StatusOK, "compromisso_form.html", appt, nil)
}

func (a *DefaultAppointmentRoute) UpdateAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	formPath := fmt.Sprintf("/editar_compromisso/%d", id)

	var req service.AppointmentRequest
	if err := c.Bind(&req); err != nil {
		return a.fail(c, apierror.MalformedBodyError, formPath)
	}

	apierr := a.AppointmentService.UpdateAppointment(id, &req, CurrentIdentity(c).User.ID)
	if apierr != nil {
		return a.fail(c, apierr, formPath)
	}
	return a.redirectWithFlash(c, userHome, "Appointment updated successfully")
}

func (a *DefaultAppointmentRoute) DeleteAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	apierr := a.AppointmentService.DeleteAppointment(id, CurrentIdentity(c).User.ID)
	if apierr != nil {
		return a.fail(c, apierr, userHome)
	}
	return a.redirectWithFlash(c, userHome, "Appointment deleted successfully")
}
