package auth

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// ErrorEnvelope is the failure payload: "fail" for client errors, "error"
// for server errors.
type ErrorEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WriteError renders any error as the JSON error envelope, deriving the HTTP
// status from the error's code.
func WriteError(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "an unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	code := richErr.Code
	if code == 0 {
		code = fiber.StatusInternalServerError
	}

	status := "fail"
	if code >= fiber.StatusInternalServerError {
		status = "error"
	}

	return c.Status(code).JSON(ErrorEnvelope{
		Status:  status,
		Message: richErr.Message,
	})
}

type AuthControllerRoutes struct {
	Signup         string
	Login          string
	Logout         string
	ForgotPassword string
	ResetPassword  string
	UpdatePassword string
}

// AuthController exposes the JSON auth surface over fiber. The heavy lifting
// lives in the flow handlers; the controller binds payloads, validates them
// and shapes responses.
type AuthController struct {
	Debug        bool
	Logger       Logger
	Store        CredentialStore
	Mailer       Mailer
	Config       Config
	Routes       *AuthControllerRoutes
	Auther       *Auther
	Guard        *Guard
	Session      *SessionIssuer
	ErrorHandler func(c *fiber.Ctx, err error) error

	register *RegisterUserHandler
	initiate *InitializePasswordResetHandler
	finalize *FinalizePasswordResetHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerStore(store CredentialStore) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Store = store
		return c
	}
}

func WithControllerMailer(mailer Mailer) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Mailer = mailer
		return c
	}
}

func WithControllerConfig(cfg Config) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Config = cfg
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		ErrorHandler: WriteError,
		Routes: &AuthControllerRoutes{
			Signup:         "/signup",
			Login:          "/login",
			Logout:         "/logout",
			ForgotPassword: "/forgot-password",
			ResetPassword:  "/reset-password",
			UpdatePassword: "/update-password",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Store == nil {
		panic("Missing CredentialStore in auth controller...")
	}

	if c.Config == nil {
		panic("Missing Config in auth controller...")
	}

	if c.Mailer == nil {
		c.Mailer = NewLogMailer(c.Logger)
	}

	codec := NewTokenCodec([]byte(c.Config.GetSigningKey()), c.Config.GetTokenExpirationDays(), c.Logger)

	c.Auther = NewAuthenticator(c.Store).WithLogger(c.Logger)
	c.Guard = NewGuard(codec, c.Store, c.Config).WithLogger(c.Logger)
	c.Session = NewSessionIssuer(codec, c.Config).WithLogger(c.Logger)

	c.register = NewRegisterUserHandler(c.Store).WithLogger(c.Logger)
	c.initiate = NewInitializePasswordResetHandler(c.Store, c.Mailer, c.Config).WithLogger(c.Logger)
	c.finalize = NewFinalizePasswordResetHandler(c.Store).WithLogger(c.Logger)

	c.Guard.ErrorHandler = c.errorHandler

	return c
}

// RegisterAuthRoutes mounts the auth surface on the given router, typically
// an /api/v1/users group.
func RegisterAuthRoutes(app fiber.Router, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Signup, controller.Signup)
	app.Post(controller.Routes.Login, controller.Login)
	app.Get(controller.Routes.Logout, controller.Logout)

	app.Post(controller.Routes.ForgotPassword, controller.ForgotPassword)
	app.Patch(controller.Routes.ResetPassword+"/:token", controller.ResetPassword)

	app.Patch(controller.Routes.UpdatePassword,
		controller.Guard.Protected(),
		controller.UpdatePassword,
	)

	return controller
}

// SignupRequest payload
type SignupRequest struct {
	FirstName       string `form:"first_name" json:"first_name"`
	LastName        string `form:"last_name" json:"last_name"`
	Email           string `form:"email" json:"email"`
	Role            string `form:"role" json:"role"`
	Password        string `form:"password" json:"password"`
	PasswordConfirm string `form:"password_confirm" json:"password_confirm"`
}

// Validate will run validation rules
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Role, validation.In(
			string(RoleGuest), string(RoleMember), string(RoleAdmin), string(RoleOwner),
		)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(
			&r.PasswordConfirm,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) Signup(c *fiber.Ctx) error {
	payload := new(SignupRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("signup parse payload", "error", err)
		return a.errorHandler(c, badInput(err))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("signup validate payload", "error", err)
		return a.errorHandler(c, invalidFields(err))
	}

	user, err := a.register.Execute(c.UserContext(), RegisterUserMessage{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Role:      payload.Role,
		Password:  payload.Password,
	})
	if err != nil {
		a.Logger.Error("signup register user", "error", err)
		return a.errorHandler(c, err)
	}

	if a.Debug {
		a.Logger.Debug("registered user", "record", print.MaybePrettyJSON(user.Redacted()))
	}

	return a.Session.Issue(c, user, fiber.StatusCreated)
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return a.errorHandler(c, badInput(err))
	}

	user, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return a.errorHandler(c, err)
	}

	return a.Session.Issue(c, user, fiber.StatusOK)
}

func (a *AuthController) Logout(c *fiber.Ctx) error {
	a.Session.Clear(c)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
	})
}

// ForgotPasswordRequest payload
type ForgotPasswordRequest struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) ForgotPassword(c *fiber.Ctx) error {
	payload := new(ForgotPasswordRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("forgot password parse payload", "error", err)
		return a.errorHandler(c, badInput(err))
	}

	if err := payload.Validate(); err != nil {
		return a.errorHandler(c, invalidFields(err))
	}

	if err := a.initiate.Execute(c.UserContext(), InitializePasswordResetMessage{
		Email: payload.Email,
	}); err != nil {
		return a.errorHandler(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "A password reset URL was just sent to " + payload.Email,
	})
}

// ResetPasswordRequest payload
type ResetPasswordRequest struct {
	Password        string `form:"password" json:"password"`
	PasswordConfirm string `form:"password_confirm" json:"password_confirm"`
}

// Validate will run validation rules
func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(
			&r.PasswordConfirm,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) ResetPassword(c *fiber.Ctx) error {
	payload := new(ResetPasswordRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("reset password parse payload", "error", err)
		return a.errorHandler(c, badInput(err))
	}

	if err := payload.Validate(); err != nil {
		return a.errorHandler(c, invalidFields(err))
	}

	user, err := a.finalize.Execute(c.UserContext(), FinalizePasswordResetMessage{
		Token:    c.Params("token"),
		Password: payload.Password,
	})
	if err != nil {
		return a.errorHandler(c, err)
	}

	// reset success authenticates the user, same as login
	return a.Session.Issue(c, user, fiber.StatusOK)
}

// UpdatePasswordRequest payload
type UpdatePasswordRequest struct {
	CurrentPassword string `form:"current_password" json:"current_password"`
	Password        string `form:"password" json:"password"`
	PasswordConfirm string `form:"password_confirm" json:"password_confirm"`
}

// Validate will run validation rules
func (r UpdatePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(
			&r.PasswordConfirm,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) UpdatePassword(c *fiber.Ctx) error {
	user, ok := UserFromLocals(c)
	if !ok {
		return a.errorHandler(c, ErrUnauthenticated)
	}

	payload := new(UpdatePasswordRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("update password parse payload", "error", err)
		return a.errorHandler(c, badInput(err))
	}

	if err := payload.Validate(); err != nil {
		return a.errorHandler(c, invalidFields(err))
	}

	updated, err := a.Auther.UpdatePassword(c.UserContext(), user.ID, payload.CurrentPassword, payload.Password)
	if err != nil {
		return a.errorHandler(c, err)
	}

	return a.Session.Issue(c, updated, fiber.StatusOK)
}

func (a *AuthController) errorHandler(c *fiber.Ctx, err error) error {
	if a.ErrorHandler != nil {
		return a.ErrorHandler(c, err)
	}
	return WriteError(c, err)
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}

func badInput(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body").
		WithCode(goerrors.CodeBadRequest)
}

func invalidFields(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
		WithCode(goerrors.CodeBadRequest)
}
