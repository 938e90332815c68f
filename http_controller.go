package signup

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// RegisterSignupRoutes wires the signup endpoints plus the health probe and
// the JSON 404 catch-all onto a fiber app.
func RegisterSignupRoutes(app *fiber.App, opts ...SignupControllerOption) *SignupController {
	controller := NewSignupController(opts...)

	if controller.Config != nil && controller.Config.GetCORSOrigin() != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: controller.Config.GetCORSOrigin(),
		}))
	}

	app.Post(controller.Routes.Registration, controller.RegistrationCreate).
		Name("registration.post")
	app.Post(controller.Routes.VerifyEmail, controller.ActivateAccount).
		Name("verify-email.post")
	app.Get(controller.Routes.Health, controller.HealthCheck).
		Name("health.get")

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("Route %s not found", c.OriginalURL()),
		})
	})

	return controller
}

type SignupControllerRoutes struct {
	Registration string
	VerifyEmail  string
	Health       string
}

type SignupController struct {
	Debug    bool
	Logger   Logger
	Config   Config
	Repo     RepositoryManager
	Tokens   *ActivationService
	Mailer   Mailer
	Renderer *MailRenderer
	Routes   *SignupControllerRoutes
}

type SignupControllerOption func(*SignupController) *SignupController

func NewSignupController(opts ...SignupControllerOption) *SignupController {
	c := &SignupController{
		Logger: defLogger{},
		Routes: &SignupControllerRoutes{
			Registration: "/api/v1/registration",
			VerifyEmail:  "/api/v1/verifyEmail",
			Health:       "/test",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in signup controller...")
	}

	if c.Tokens == nil {
		panic("Missing ActivationService in signup controller...")
	}

	return c
}

func WithControllerRepo(repo RepositoryManager) SignupControllerOption {
	return func(c *SignupController) *SignupController {
		c.Repo = repo
		return c
	}
}

func WithControllerTokens(tokens *ActivationService) SignupControllerOption {
	return func(c *SignupController) *SignupController {
		c.Tokens = tokens
		return c
	}
}

func WithControllerMailer(mailer Mailer) SignupControllerOption {
	return func(c *SignupController) *SignupController {
		c.Mailer = mailer
		return c
	}
}

func WithControllerMailRenderer(renderer *MailRenderer) SignupControllerOption {
	return func(c *SignupController) *SignupController {
		c.Renderer = renderer
		return c
	}
}

func WithControllerConfig(cfg Config) SignupControllerOption {
	return func(c *SignupController) *SignupController {
		c.Config = cfg
		return c
	}
}

func WithControllerLogger(logger Logger) SignupControllerOption {
	return func(c *SignupController) *SignupController {
		c.Logger = logger
		return c
	}
}

func WithControllerDebug(debug bool) SignupControllerOption {
	return func(c *SignupController) *SignupController {
		c.Debug = debug
		return c
	}
}

// RegistrationCreatePayload is the issuance request body
type RegistrationCreatePayload struct {
	Name     string `form:"name" json:"name"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

// ActivateAccountPayload is the redemption request body
type ActivateAccountPayload struct {
	ActivationToken string `form:"activation_token" json:"activation_token"`
	ActivationCode  string `form:"activation_code" json:"activation_code"`
}

// Validate will validate the payload
func (r ActivateAccountPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ActivationToken, validation.Required),
		validation.Field(&r.ActivationCode, validation.Required, validation.Length(4, 4), is.Digit),
	)
}

func (a *SignupController) RegistrationCreate(c *fiber.Ctx) error {
	payload := new(RegistrationCreatePayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("registration parse payload", "error", err)
		return a.errorEnvelope(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("registration validate payload", "error", err)
		return a.errorEnvelope(c, goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
			WithCode(goerrors.CodeBadRequest))
	}

	if a.Debug {
		fmt.Println("======= SIGNUP REGISTRATION ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("==================================")
	}

	var resp *SignupRequestResponse

	handler := NewSignupRequestHandler(a.Repo, a.Tokens).
		WithMailer(a.Mailer).
		WithMailRenderer(a.Renderer).
		WithLogger(a.Logger)

	err := handler.Execute(c.Context(), SignupRequestMessage{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		OnResponse: func(r *SignupRequestResponse) {
			resp = r
		},
	})
	if err != nil {
		a.Logger.Error("registration execute", "email", payload.Email, "error", err)
		return a.errorEnvelope(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":         true,
		"message":         fmt.Sprintf("Please check your email: %s to activate your account", payload.Email),
		"activationToken": resp.ActivationToken,
	})
}

func (a *SignupController) ActivateAccount(c *fiber.Ctx) error {
	payload := new(ActivateAccountPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("activation parse payload", "error", err)
		return a.errorEnvelope(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("activation validate payload", "error", err)
		return a.errorEnvelope(c, goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
			WithCode(goerrors.CodeBadRequest))
	}

	var resp *ActivateAccountResponse

	handler := NewActivateAccountHandler(a.Repo, a.Tokens).
		WithLogger(a.Logger)

	err := handler.Execute(c.Context(), ActivateAccountMessage{
		Token: payload.ActivationToken,
		Code:  payload.ActivationCode,
		OnResponse: func(r *ActivateAccountResponse) {
			resp = r
		},
	})
	if err != nil {
		a.Logger.Error("activation execute", "error", err)
		return a.errorEnvelope(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Account activated successfully",
		"data":    resp.User,
	})
}

func (a *SignupController) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": "API is working",
	})
}

// errorEnvelope converts any error into the uniform response envelope.
// Client input failures carry CodeBadRequest on their sentinel; anything
// without an explicit code is an internal failure.
func (a *SignupController) errorEnvelope(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal server error"

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		if richErr.Code > 0 {
			status = richErr.Code
		}
		message = richErr.Message
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
