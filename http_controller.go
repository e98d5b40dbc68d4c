package flightdeck

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// AuthControllerRoutes are the paths the controller mounts.
type AuthControllerRoutes struct {
	Register string
	Login    string
	Logout   string
	User     string
}

// AuthController exposes the authentication core over JSON.
type AuthController struct {
	Debug      bool
	Logger     Logger
	Auther     *Auther
	ContextKey string
	Routes     *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:     defLogger{},
		ContextKey: "user",
		Routes: &AuthControllerRoutes{
			Register: "/api/users",
			Login:    "/api/users/login",
			Logout:   "/api/users/logout",
			User:     "/api/user",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	return c
}

func WithAuther(auther *Auther) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithContextKey(key string) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if key != "" {
			c.ContextKey = key
		}
		return c
	}
}

func WithDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

// RegisterAuthRoutes mounts the controller on the app.
func RegisterAuthRoutes(app *fiber.App, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	required := controller.Auther.RequireAuth(controller.ContextKey, false)

	app.Post(controller.Routes.Register, controller.RegistrationCreate)
	app.Post(controller.Routes.Login, controller.LoginPost)
	// Logout stays outside the gate: revoking a token twice must surface
	// as a client error, not as an authentication failure.
	app.Delete(controller.Routes.Logout, controller.LogOut)
	app.Get(controller.Routes.User, required, controller.UserShow)
	app.Put(controller.Routes.User, required, controller.UserUpdate)

	return controller
}

// RegistrationCreatePayload is the registration body
type RegistrationCreatePayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *AuthController) RegistrationCreate(ctx *fiber.Ctx) error {
	payload := new(RegistrationCreatePayload)

	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Error("register user parse payload", "error", err)
		return WriteError(ctx, errors.Wrap(err, errors.CategoryBadInput, "error parsing body"))
	}

	if a.Debug {
		fmt.Println("======= AUTH REGISTER ===")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	user, token, err := a.Auther.Register(ctx.UserContext(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		a.Logger.Error("register user error", "error", err)
		return WriteError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user": userEnvelope(user, token),
	})
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) LoginPost(ctx *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return WriteError(ctx, errors.Wrap(err, errors.CategoryBadInput, "error parsing body"))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("login validate payload", "error", err)
		return WriteError(ctx, err)
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	user, token, err := a.Auther.Login(ctx.UserContext(), payload.Email, payload.Password)
	if err != nil {
		a.Logger.Error("login error", "error", err)
		return WriteError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"user": userEnvelope(user, token),
	})
}

func (a *AuthController) LogOut(ctx *fiber.Ctx) error {
	if err := a.Auther.Logout(ctx.UserContext(), ctx.Get(fiber.HeaderAuthorization)); err != nil {
		a.Logger.Error("logout error", "error", err)
		return WriteError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": "successfully logged out",
	})
}

func (a *AuthController) UserShow(ctx *fiber.Ctx) error {
	user := UserFromContext(ctx, a.ContextKey)
	if user == nil {
		return WriteError(ctx, ErrMissingCredentials)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"user": userEnvelope(user, ""),
	})
}

// UserUpdatePayload carries the updatable identity fields. Zero-value
// fields are left untouched.
type UserUpdatePayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules on the provided fields only
func (r UserUpdatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.RuneLength(4, 128),
		),
		validation.Field(
			&r.Email,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.RuneLength(8, 128),
		),
	)
}

func (a *AuthController) UserUpdate(ctx *fiber.Ctx) error {
	user := UserFromContext(ctx, a.ContextKey)
	if user == nil {
		return WriteError(ctx, ErrMissingCredentials)
	}

	payload := new(UserUpdatePayload)
	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Error("user update parse payload", "error", err)
		return WriteError(ctx, errors.Wrap(err, errors.CategoryBadInput, "error parsing body"))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("user update validate payload", "error", err)
		return WriteError(ctx, err)
	}

	columns := []string{}
	if payload.Username != "" {
		user.Name = payload.Username
		columns = append(columns, "username")
	}
	if payload.Email != "" {
		user.EmailAddress = payload.Email
		columns = append(columns, "email")
	}
	if payload.Password != "" {
		hash, err := HashPassword(payload.Password)
		if err != nil {
			return WriteError(ctx, err)
		}
		user.PasswordHash = hash
		columns = append(columns, "password_hash")
	}

	if len(columns) > 0 {
		updated, err := a.Auther.repo.Users().Update(ctx.UserContext(), user, columns...)
		if err != nil {
			a.Logger.Error("user update error", "error", err)
			return WriteError(ctx, err)
		}
		user = updated
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"user": userEnvelope(user, ""),
	})
}

func userEnvelope(user *User, token string) fiber.Map {
	body := fiber.Map{
		"id":        user.UserID,
		"username":  user.Name,
		"email":     user.EmailAddress,
		"is_active": user.Active,
	}
	if token != "" {
		body["token"] = token
	}
	return body
}
