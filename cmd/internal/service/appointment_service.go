package service

import (
	"agenda/cmd/internal/domain/entity"
	"agenda/cmd/internal/utils"
	"agenda/cmd/internal/utils/apierror"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

// upcomingDays bounds the upcoming window: from the start of today up to
// and including midnight at the start of today+7.
const upcomingDays = 7

type AppointmentRepository interface {
	Save(appointment *entity.Appointment) error
	FindByID(id int) (*entity.Appointment, error)
	FindByUserID(userID int) ([]*entity.Appointment, error)
	FindFromByUserID(userID int, from int64) ([]*entity.Appointment, error)
	FindBetweenByUserID(userID int, from, to int64) ([]*entity.Appointment, error)
	FindWithinByUserID(userID int, from, to int64) ([]*entity.Appointment, error)
	CountByUserID(userID int) (int64, error)
	Delete(appointment *entity.Appointment) error
	DeleteByUserID(userID int) error
}

type AppointmentRequest struct {
	Title       string `form:"nome" validate:"required,max=200"`
	Description string `form:"descricao" validate:"required"`
	DateTime    string `form:"data_hora" validate:"required,datetimelocal"`
}

// SearchRequest filters the caller's appointments by calendar day. An
// empty Date lists them all.
type SearchRequest struct {
	Date string `query:"data" validate:"omitempty,isodate"`
}

type AppointmentResponse struct {
	ID          int    `json:"id"`
	Title       string `json:"nome"`
	Description string `json:"descricao"`
	DateTime    string `json:"data_hora"`
	Date        string `json:"data,omitempty"`
	Time        string `json:"hora,omitempty"`

	// InputValue pre-fills the edit form (YYYY-MM-DDTHH:MM).
	InputValue string `json:"-"`
}

// Agenda is the caller's list of future appointments plus today's date
// (DD/MM/YYYY) for display.
type Agenda struct {
	Today        string
	Appointments []*AppointmentResponse
}

type DefaultAppointmentService struct {
	AppointmentRepo AppointmentRepository
	UserRepo        UserRepository
	Validate        *validator.Validate
	Location        *time.Location
	Now             func() time.Time
}

func NewAppointmentService(apptRepo AppointmentRepository, userRepo UserRepository, validate *validator.Validate, loc *time.Location) *DefaultAppointmentService {
	return &DefaultAppointmentService{
		AppointmentRepo: apptRepo,
		UserRepo:        userRepo,
		Validate:        validate,
		Location:        loc,
		Now:             time.Now,
	}
}

// GetAgenda lists the caller's appointments that have not started yet.
func (a *DefaultAppointmentService) GetAgenda(callerID int) (*Agenda, apierror.ErrorResponse) {
	caller, apierr := a.fetchCaller(callerID)
	if apierr != nil {
		return nil, apierr
	}

	now := a.Now()
	appts, err := a.AppointmentRepo.FindFromByUserID(caller.ID, now.UnixMilli())
	if err != nil {
		log.Errorf("failed to find agenda for user %d: %v", caller.ID, err)
		return nil, apierror.InternalServerError
	}

	return &Agenda{
		Today:        now.In(a.Location).Format("02/01/2006"),
		Appointments: a.toResponses(appts, true),
	}, nil
}

// GetUpcoming lists the caller's appointments from the start of today up
// to midnight at the start of today+7, both ends included.
func (a *DefaultAppointmentService) GetUpcoming(callerID int) ([]*AppointmentResponse, apierror.ErrorResponse) {
	caller, apierr := a.fetchCaller(callerID)
	if apierr != nil {
		return nil, apierr
	}

	start := utils.StartOfDay(a.Now().In(a.Location))
	from, to := start.UnixMilli(), start.AddDate(0, 0, upcomingDays).UnixMilli()
	appts, err := a.AppointmentRepo.FindWithinByUserID(caller.ID, from, to)
	if err != nil {
		log.Errorf("failed to find upcoming appointments for user %d: %v", caller.ID, err)
		return nil, apierror.InternalServerError
	}
	return a.toResponses(appts, false), nil
}

// Search returns every appointment of the caller when req.Date is empty,
// otherwise only those falling on that calendar day (YYYY-MM-DD).
func (a *DefaultAppointmentService) Search(req *SearchRequest, callerID int) ([]*AppointmentResponse, apierror.ErrorResponse) {
	caller, apierr := a.fetchCaller(callerID)
	if apierr != nil {
		return nil, apierr
	}

	utils.Sanitize(req)
	if err := a.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	var (
		appts []*entity.Appointment
		err   error
	)
	if req.Date == "" {
		appts, err = a.AppointmentRepo.FindByUserID(caller.ID)
	} else {
		day, perr := utils.ParseDate(req.Date, a.Location)
		if perr != nil {
			return nil, apierror.InvalidDateError
		}
		from, to := utils.DayRange(day, 1)
		appts, err = a.AppointmentRepo.FindBetweenByUserID(caller.ID, from, to)
	}

	if err != nil {
		log.Errorf("failed to search appointments for user %d (date %q): %v", caller.ID, req.Date, err)
		return nil, apierror.InternalServerError
	}
	return a.toResponses(appts, true), nil
}

func (a *DefaultAppointmentService) GetAppointment(id, callerID int) (*AppointmentResponse, apierror.ErrorResponse) {
	caller, apierr := a.fetchCaller(callerID)
	if apierr != nil {
		return nil, apierr
	}

	appt, apierr := a.fetchOwned(id, caller)
	if apierr != nil {
		return nil, apierr
	}
	return a.toResponse(appt, true), nil
}

func (a *DefaultAppointmentService) CreateAppointment(req *AppointmentRequest, callerID int) (*AppointmentResponse, apierror.ErrorResponse) {
	caller, apierr := a.fetchCaller(callerID)
	if apierr != nil {
		return nil, apierr
	}

	scheduledAt, apierr := a.parseRequest(req)
	if apierr != nil {
		return nil, apierr
	}

	appointment := &entity.Appointment{
		Title:       req.Title,
		Description: req.Description,
		ScheduledAt: scheduledAt,
		UserID:      caller.ID,
	}

	if err := a.AppointmentRepo.Save(appointment); err != nil {
		log.Errorf("failed to save appointment for user %d: %v", caller.ID, err)
		return nil, apierror.InternalServerError
	}
	return a.toResponse(appointment, true), nil
}

func (a *DefaultAppointmentService) UpdateAppointment(id int, req *AppointmentRequest, callerID int) apierror.ErrorResponse {
	caller, apierr := a.fetchCaller(callerID)
	if apierr != nil {
		return apierr
	}

	appt, apierr := a.fetchOwned(id, caller)
	if apierr != nil {
		return apierr
	}

	scheduledAt, apierr := a.parseRequest(req)
	if apierr != nil {
		return apierr
	}

	appt.Title = req.Title
	appt.Description = req.Description
	appt.ScheduledAt = scheduledAt

	if err := a.AppointmentRepo.Save(appt); err != nil {
		log.Errorf("failed to update appointment %d: %v", appt.ID, err)
		return apierror.InternalServerError
	}
	return nil
}

func (a *DefaultAppointmentService) DeleteAppointment(id, callerID int) apierror.ErrorResponse {
	caller, apierr := a.fetchCaller(callerID)
	if apierr != nil {
		return apierr
	}

	appt, apierr := a.fetchOwned(id, caller)
	if apierr != nil {
		return apierr
	}

	if err := a.AppointmentRepo.Delete(appt); err != nil {
		log.Errorf("failed to delete appointment by id %d: %v", id, err)
		return apierror.InternalServerError
	}
	return nil
}

// fetchCaller re-reads the acting user. Appointments belong to regular
// users only, so administrators are refused.
func (a *DefaultAppointmentService) fetchCaller(callerID int) (*entity.User, apierror.ErrorResponse) {
	caller, err := a.UserRepo.FindByID(callerID)
	if err != nil {
		log.Errorf("failed to fetch user %d: %v", callerID, err)
		return nil, apierror.InternalServerError
	}

	if caller == nil || !caller.IsActive {
		return nil, apierror.InvalidSessionError
	}

	if caller.IsAdmin {
		return nil, apierror.ForbiddenError
	}
	return caller, nil
}

// fetchOwned separates "does not exist" (NotFoundError) from "not yours"
// (ForbiddenError).
func (a *DefaultAppointmentService) fetchOwned(id int, caller *entity.User) (*entity.Appointment, apierror.ErrorResponse) {
	appt, err := a.AppointmentRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch appointment by id %d: %v", id, err)
		return nil, apierror.InternalServerError
	}

	if appt == nil {
		return nil, apierror.NotFoundError
	}

	if appt.UserID != caller.ID {
		log.Warnf("user %d tried to access appointment %d owned by user %d", caller.ID, appt.ID, appt.UserID)
		return nil, apierror.ForbiddenError
	}
	return appt, nil
}

func (a *DefaultAppointmentService) parseRequest(req *AppointmentRequest) (int64, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := a.Validate.Struct(req); err != nil {
		return 0, apierror.FromValidationError(err)
	}

	scheduledAt, err := utils.ParseDateTimeInput(req.DateTime, a.Location)
	if err != nil {
		return 0, apierror.InvalidDateError
	}
	return scheduledAt, nil
}

func (a *DefaultAppointmentService) toResponses(appts []*entity.Appointment, withParts bool) []*AppointmentResponse {
	resp := make([]*AppointmentResponse, len(appts))
	for i, appt := range appts {
		resp[i] = a.toResponse(appt, withParts)
	}
	return resp
}

func (a *DefaultAppointmentService) toResponse(appt *entity.Appointment, withParts bool) *AppointmentResponse {
	resp := &AppointmentResponse{
		ID:          appt.ID,
		Title:       appt.Title,
		Description: appt.Description,
		DateTime:    utils.FormatEpoch(appt.ScheduledAt, utils.DateTimeLayout, a.Location),
		InputValue:  utils.FormatEpoch(appt.ScheduledAt, utils.DateTimeInputLayout, a.Location),
	}
	if withParts {
		resp.Date = utils.FormatEpoch(appt.ScheduledAt, utils.DateLayout, a.Location)
		resp.Time = utils.FormatEpoch(appt.ScheduledAt, utils.TimeLayout, a.Location)
	}
	return resp
}
