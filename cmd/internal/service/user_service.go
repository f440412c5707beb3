package service

import (
	"agenda/cmd/internal/domain/entity"
	"agenda/cmd/internal/utils"
	"agenda/cmd/internal/utils/apierror"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type UserRepository interface {
	FindByID(id int) (*entity.User, error)
	FindByUsername(username string) (*entity.User, error)
	ExistsByUsername(username string) (bool, error)
	FindAll() ([]*entity.User, error)
	Save(user *entity.User) error
	Delete(user *entity.User) error
}

type LoginRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required" sanitize:"-"`
}

type CreateUserRequest struct {
	Username string         `form:"username" validate:"required,max=80"`
	Password string         `form:"password" validate:"required" sanitize:"-"`
	IsAdmin  utils.Checkbox `form:"is_admin"`
}

// UpdateUserRequest edits a user. An empty Password leaves the current
// hash untouched.
type UpdateUserRequest struct {
	Username string         `form:"username" validate:"required,max=80"`
	Password string         `form:"password" sanitize:"-"`
	IsAdmin  utils.Checkbox `form:"is_admin"`
	IsActive utils.Checkbox `form:"is_active"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `form:"senha_atual" sanitize:"-"`
	NewPassword     string `form:"nova_senha" validate:"required" sanitize:"-"`
	ConfirmPassword string `form:"confirmar_senha" sanitize:"-"`
}

type UserResponse struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	IsAdmin     bool   `json:"is_admin"`
	IsActive    bool   `json:"is_active"`
	IsProtected bool   `json:"is_protected"`

	// Appointments is only filled in the user listing.
	Appointments int64 `json:"appointments"`
}

type DefaultUserService struct {
	UserRepo        UserRepository
	AppointmentRepo AppointmentRepository
	SessionRepo     SessionRepository
	Validate        *validator.Validate
}

func NewUserService(userRepo UserRepository, apptRepo AppointmentRepository, sessionRepo SessionRepository, validate *validator.Validate) *DefaultUserService {
	return &DefaultUserService{UserRepo: userRepo, AppointmentRepo: apptRepo, SessionRepo: sessionRepo, Validate: validate}
}

// EnsureAdmin creates the protected administrator when it does not exist yet.
// It reports whether a new row was created.
func (u *DefaultUserService) EnsureAdmin(password string) (bool, error) {
	admin, err := u.UserRepo.FindByUsername(entity.AdminUsername)
	if err != nil {
		return false, err
	}
	if admin != nil {
		return false, nil
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return false, err
	}

	admin = &entity.User{
		Username:     entity.AdminUsername,
		PasswordHash: hash,
		IsAdmin:      true,
		IsActive:     true,
	}
	if err := u.UserRepo.Save(admin); err != nil {
		return false, err
	}
	return true, nil
}

// Authenticate checks credentials. Unknown users and wrong passwords get
// the same error; a disabled account is only reported once the password
// has matched.
func (u *DefaultUserService) Authenticate(req *LoginRequest) (*entity.User, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.InvalidCredentialsError
	}

	user, err := u.UserRepo.FindByUsername(req.Username)
	if err != nil {
		log.Errorf("failed to fetch user %q: %v", req.Username, err)
		return nil, apierror.InternalServerError
	}

	if user == nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apierror.InvalidCredentialsError
	}

	if !user.IsActive {
		return nil, apierror.UserDisabledError
	}
	return user, nil
}

func (u *DefaultUserService) GetUsers(callerID int) ([]*UserResponse, apierror.ErrorResponse) {
	if apierr := u.requireAdmin(callerID); apierr != nil {
		return nil, apierr
	}

	users, err := u.UserRepo.FindAll()
	if err != nil {
		log.Errorf("failed to fetch all users: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*UserResponse, len(users))
	for i, user := range users {
		resp[i] = toUserResponse(user)

		count, err := u.AppointmentRepo.CountByUserID(user.ID)
		if err != nil {
			log.Errorf("failed to count appointments of user %d: %v", user.ID, err)
			return nil, apierror.InternalServerError
		}
		resp[i].Appointments = count
	}
	return resp, nil
}

func (u *DefaultUserService) GetUser(id, callerID int) (*UserResponse, apierror.ErrorResponse) {
	if apierr := u.requireAdmin(callerID); apierr != nil {
		return nil, apierr
	}

	user, apierr := u.fetchByID(id)
	if apierr != nil {
		return nil, apierr
	}
	return toUserResponse(user), nil
}

func (u *DefaultUserService) CreateUser(req *CreateUserRequest, callerID int) apierror.ErrorResponse {
	if apierr := u.requireAdmin(callerID); apierr != nil {
		return apierr
	}

	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	found, err := u.UserRepo.ExistsByUsername(req.Username)
	if err != nil {
		log.Errorf("failed to check if user %q already exists: %v", req.Username, err)
		return apierror.InternalServerError
	}

	if found {
		return apierror.UserAlreadyExistsError
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		log.Errorf("failed to hash password for user %q: %v", req.Username, err)
		return apierror.InternalServerError
	}

	user := &entity.User{
		Username:     req.Username,
		PasswordHash: hash,
		IsAdmin:      req.IsAdmin.Bool(),
		IsActive:     true,
	}

	err = u.UserRepo.Save(user)
	if err != nil {
		log.Errorf("failed to create user %q: %v", req.Username, err)
		return apierror.InternalServerError
	}
	return nil
}

func (u *DefaultUserService) UpdateUser(id int, req *UpdateUserRequest, callerID int) apierror.ErrorResponse {
	if apierr := u.requireAdmin(callerID); apierr != nil {
		return apierr
	}

	user, apierr := u.fetchByID(id)
	if apierr != nil {
		return apierr
	}

	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	if user.IsProtected() &&
		(req.Username != user.Username || !req.IsAdmin.Bool() || !req.IsActive.Bool()) {
		return apierror.ProtectedUserError
	}

	if req.IsAdmin.Bool() && !user.IsAdmin {
		count, err := u.AppointmentRepo.CountByUserID(user.ID)
		if err != nil {
			log.Errorf("failed to count appointments of user %d: %v", user.ID, err)
			return apierror.InternalServerError
		}
		if count > 0 {
			return apierror.UserOwnsAppointmentsError
		}
	}

	if req.Username != user.Username {
		taken, err := u.UserRepo.ExistsByUsername(req.Username)
		if err != nil {
			log.Errorf("failed to check if user %q already exists: %v", req.Username, err)
			return apierror.InternalServerError
		}
		if taken {
			return apierror.UserAlreadyExistsError
		}
	}

	user.Username = req.Username
	user.IsAdmin = req.IsAdmin.Bool()
	user.IsActive = req.IsActive.Bool()

	if req.Password != "" {
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			log.Errorf("failed to hash password for user %d: %v", user.ID, err)
			return apierror.InternalServerError
		}
		user.PasswordHash = hash
	}

	if err := u.UserRepo.Save(user); err != nil {
		log.Errorf("failed to update user %d: %v", user.ID, err)
		return apierror.InternalServerError
	}
	return nil
}

// DeleteUser removes a user together with every appointment and session
// it owns. Appointments go first so no appointment is ever left pointing
// at a missing owner. The steps are not wrapped in a transaction.
func (u *DefaultUserService) DeleteUser(id, callerID int) apierror.ErrorResponse {
	if apierr := u.requireAdmin(callerID); apierr != nil {
		return apierr
	}

	user, apierr := u.fetchByID(id)
	if apierr != nil {
		return apierr
	}

	if user.IsProtected() {
		return apierror.ProtectedUserError
	}

	if err := u.AppointmentRepo.DeleteByUserID(user.ID); err != nil {
		log.Errorf("failed to delete appointments of user %d: %v", user.ID, err)
		return apierror.InternalServerError
	}

	if err := u.UserRepo.Delete(user); err != nil {
		log.Errorf("failed to delete user %d: %v", user.ID, err)
		return apierror.InternalServerError
	}

	if err := u.SessionRepo.DeleteByUserID(user.ID); err != nil {
		// A leftover session no longer resolves: its user is gone.
		log.Errorf("failed to delete sessions of user %d: %v", user.ID, err)
	}
	return nil
}

func (u *DefaultUserService) ChangePassword(req *ChangePasswordRequest, callerID int) apierror.ErrorResponse {
	user, err := u.UserRepo.FindByID(callerID)
	if err != nil {
		log.Errorf("failed to fetch user %d: %v", callerID, err)
		return apierror.InternalServerError
	}

	if user == nil {
		return apierror.InvalidSessionError
	}

	if !utils.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return apierror.WrongPasswordError
	}

	if req.NewPassword != req.ConfirmPassword {
		return apierror.PasswordMismatchError
	}

	if err := u.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		log.Errorf("failed to hash password for user %d: %v", user.ID, err)
		return apierror.InternalServerError
	}

	user.PasswordHash = hash
	if err := u.UserRepo.Save(user); err != nil {
		log.Errorf("failed to update password of user %d: %v", user.ID, err)
		return apierror.InternalServerError
	}
	return nil
}

// requireAdmin re-reads the caller on every call; the admin flag is never
// taken from the session.
func (u *DefaultUserService) requireAdmin(callerID int) apierror.ErrorResponse {
	caller, err := u.UserRepo.FindByID(callerID)
	if err != nil {
		log.Errorf("failed to check if user %d is admin: %v", callerID, err)
		return apierror.InternalServerError
	}

	if caller == nil || !caller.IsActive || !caller.IsAdmin {
		return apierror.ForbiddenError
	}
	return nil
}

func (u *DefaultUserService) fetchByID(id int) (*entity.User, apierror.ErrorResponse) {
	user, err := u.UserRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to find user (%d) by id: %v", id, err)
		return nil, apierror.InternalServerError
	}

	if user == nil {
		return nil, apierror.NotFoundError
	}
	return user, nil
}

func toUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		IsAdmin:     user.IsAdmin,
		IsActive:    user.IsActive,
		IsProtected: user.IsProtected(),
	}
}
