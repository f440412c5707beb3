package routes

import (
	"agenda/cmd/internal/service"
	"agenda/cmd/internal/view"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"golang.org/x/time/rate"
)

// AccountService is the user service as seen by the routes: login,
// password change and user management.
type AccountService interface {
	AuthService
	UserService
}

type Services struct {
	Users        AccountService
	Appointments AppointmentService
	Sessions     SessionService
}

type Options struct {
	SecureCookies bool

	// LoginRate is POST /login requests per second per client; zero or
	// less disables the limiter.
	LoginRate  float64
	LoginBurst int

	// Ping reports storage health for GET /health.
	Ping func() error
}

func Register(e *echo.Echo, svc Services, opts Options) {
	authRoutes := NewAuthDefault(svc.Users, svc.Sessions, opts.SecureCookies)
	userRoutes := NewUserDefault(svc.Users, svc.Sessions)
	apptRoutes := NewAppointmentDefault(svc.Appointments, svc.Sessions)

	e.Use(LoadSession(svc.Sessions, opts.SecureCookies))

	// Session
	e.GET("/", authRoutes.Index)
	e.GET("/login", authRoutes.LoginForm)
	e.POST("/login", authRoutes.Login, loginLimiter(opts)...)
	e.GET("/logout", authRoutes.Logout, RequireLogin)
	e.GET("/alterar_senha", authRoutes.PasswordForm, RequireLogin)
	e.POST("/alterar_senha", authRoutes.ChangePassword, RequireLogin)

	// Users
	e.GET("/admin", userRoutes.GetUsers, AdminOnly)
	e.POST("/criar_usuario", userRoutes.CreateUser, AdminOnly)
	e.GET("/editar_usuario/:id", userRoutes.EditUserForm, AdminOnly)
	e.POST("/editar_usuario/:id", userRoutes.UpdateUser, AdminOnly)
	e.GET("/excluir_usuario/:id", userRoutes.DeleteUser, AdminOnly)

	// Appointments
	e.GET("/agenda", apptRoutes.GetAgenda, UsersOnly)
	e.GET("/proximos_compromissos", apptRoutes.GetUpcoming, UsersOnly)
	e.GET("/pesquisar_compromissos", apptRoutes.Search, UsersOnly)
	e.GET("/criar_compromisso", apptRoutes.CreateForm, UsersOnly)
	e.POST("/criar_compromisso", apptRoutes.CreateAppointment, UsersOnly)
	e.GET("/editar_compromisso/:id", apptRoutes.EditForm, UsersOnly)
	e.POST("/editar_compromisso/:id", apptRoutes.UpdateAppointment, UsersOnly)
	e.GET("/excluir_compromisso/:id", apptRoutes.DeleteAppointment, UsersOnly)

	e.GET("/health", healthCheck(opts.Ping))
}

func loginLimiter(opts Options) []echo.MiddlewareFunc {
	if opts.LoginRate <= 0 {
		return nil
	}

	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(opts.LoginRate),
		Burst:     opts.LoginBurst,
		ExpiresIn: 3 * time.Minute,
	})
	return []echo.MiddlewareFunc{middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			log.Warnf("login rate limit exceeded for %s", identifier)
			return c.Render(http.StatusTooManyRequests, "login.html", &view.Page{Error: "Too many login attempts, try again shortly"})
		},
	})}
}

func healthCheck(ping func() error) echo.HandlerFunc {
	return func(c echo.Context) error {
		if ping != nil {
			if err := ping(); err != nil {
				log.Errorf("health check failed: %v", err)
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unhealthy", "error": "database ping failed"})
			}
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "healthy"})
	}
}

var (
	_ AccountService     = (*service.DefaultUserService)(nil)
	_ AppointmentService = (*service.DefaultAppointmentService)(nil)
	_ SessionService     = (*service.DefaultSessionService)(nil)
)
