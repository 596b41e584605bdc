package authscreen

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"

	"github.com/goliatone/go-authscreen/middleware/csrf"
)

const (
	actionToggle = "toggle"
	userLocalKey = "user"
)

// RegisterAuthRoutes mounts the auth screen, logout and the guarded browse view
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Get(controller.Routes.Home, controller.HomeRedirect).
		SetName("home.get")

	app.Get(controller.Routes.Login, controller.LoginShow, controller.formMiddleware()...).
		SetName("sign-in.get")
	app.Post(controller.Routes.Login, controller.LoginPost, controller.formMiddleware()...).
		SetName("sign-in.post")

	app.Get(controller.Routes.Logout, controller.LogOut).
		SetName("sign-out.get")

	app.Get(controller.Routes.Browse, controller.BrowseShow, controller.RequireSession).
		SetName("browse.get")

	return controller
}

type AuthControllerRoutes struct {
	Home   string
	Login  string
	Logout string
	Browse string
}

type AuthControllerViews struct {
	Login  string
	Browse string
	Error  string
}

type AuthController struct {
	Debug    bool
	Brand    string
	Logger   Logger
	Screen   *AuthScreen
	Users    UserState
	Verifier TokenVerifier
	Routes   *AuthControllerRoutes
	Views    *AuthControllerViews
	Cookie   CookieOptions
	// CSRF guards the login form when set
	CSRF         router.MiddlewareFunc
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func WithScreen(screen *AuthScreen) AuthControllerOption {
	return func(a *AuthController) *AuthController {
		a.Screen = screen
		return a
	}
}

func WithUserState(users UserState) AuthControllerOption {
	return func(a *AuthController) *AuthController {
		a.Users = users
		return a
	}
}

func WithTokenVerifier(verifier TokenVerifier) AuthControllerOption {
	return func(a *AuthController) *AuthController {
		a.Verifier = verifier
		return a
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(a *AuthController) *AuthController {
		if logger != nil {
			a.Logger = logger
		}
		return a
	}
}

func WithCookieOptions(opts CookieOptions) AuthControllerOption {
	return func(a *AuthController) *AuthController {
		a.Cookie = opts
		return a
	}
}

func WithBrand(brand string) AuthControllerOption {
	return func(a *AuthController) *AuthController {
		if brand != "" {
			a.Brand = brand
		}
		return a
	}
}

func WithDebug(debug bool) AuthControllerOption {
	return func(a *AuthController) *AuthController {
		a.Debug = debug
		return a
	}
}

func WithCSRF(mw router.MiddlewareFunc) AuthControllerOption {
	return func(a *AuthController) *AuthController {
		a.CSRF = mw
		return a
	}
}

func WithErrorHandler(handler router.ErrorHandler) AuthControllerOption {
	return func(a *AuthController) *AuthController {
		if handler != nil {
			a.ErrorHandler = handler
		}
		return a
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Brand:  "Netflix",
		Logger: defLogger{},
		Cookie: DefaultCookieOptions(),
		Routes: &AuthControllerRoutes{
			Home:   "/",
			Login:  "/login",
			Logout: "/logout",
			Browse: DefaultBrowsePath,
		},
		Views: &AuthControllerViews{
			Login:  "login",
			Browse: "browse",
			Error:  "error",
		},
	}

	c.ErrorHandler = c.defaultErrHandler

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Screen == nil {
		panic("Missing AuthScreen in auth controller...")
	}

	if c.Verifier == nil {
		panic("Missing TokenVerifier in auth controller...")
	}

	c.Users = normalizeUserState(c.Users)

	return c
}

func (a *AuthController) formMiddleware() []router.MiddlewareFunc {
	if a.CSRF == nil {
		return nil
	}
	return []router.MiddlewareFunc{a.CSRF}
}

func (a *AuthController) HomeRedirect(ctx router.Context) error {
	return ctx.Redirect(a.Routes.Browse, fiber.StatusFound)
}

func (a *AuthController) LoginShow(ctx router.Context) error {
	form := NewFormState()
	form.Mode = ParseMode(ctx.Query("mode", ""))
	return a.renderLogin(ctx, form, false)
}

// LoginRequest is the login form payload. The error line is never read
// from the request.
type LoginRequest struct {
	Action      string `form:"action" json:"action"`
	Mode        string `form:"mode" json:"mode"`
	Email       string `form:"email" json:"email"`
	Password    string `form:"password" json:"-"`
	DisplayName string `form:"display_name" json:"display_name"`
}

// FormState builds the screen state the payload describes
func (r LoginRequest) FormState() *FormState {
	return &FormState{
		Mode:        ParseMode(r.Mode),
		Email:       r.Email,
		Password:    r.Password,
		DisplayName: r.DisplayName,
	}
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login post parse payload: %v", err)
		return a.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "Failed to parse form").
			WithCode(goerrors.CodeBadRequest))
	}

	form := payload.FormState()

	// reading the flash also clears it
	previous := flash.Get(ctx)

	if payload.Action == actionToggle {
		form.Toggle()
		if form.ErrorMessage = flashedError(previous); form.ErrorMessage != "" {
			ctx = flash.WithError(ctx, router.ViewContext{
				"error_message": form.ErrorMessage,
			})
		}
		return a.renderLogin(ctx, form, true)
	}

	if a.Debug {
		a.Logger.Debug("======= AUTH SUBMIT ======\n%s", print.MaybePrettyJSON(payload))
	}

	session := NewCookieSessionStore(ctx, a.Cookie)
	if _, err := a.Screen.Submit(ctx.Context(), form, session, routeNavigator{ctx: ctx}); err != nil {
		if IsFormError(err) {
			return a.renderLogin(flash.WithError(ctx, router.ViewContext{
				"error_message":  form.ErrorMessage,
				"system_message": "Authentication failed",
			}), form, false)
		}
		return a.ErrorHandler(ctx, err)
	}

	return nil
}

func flashedError(data router.ViewContext) string {
	msg, _ := data["error_message"].(string)
	return msg
}

func (a *AuthController) LogOut(ctx router.Context) error {
	NewCookieSessionStore(ctx, a.Cookie).Delete(SessionTokenKey)
	return ctx.Redirect(a.Routes.Login, router.StatusSeeOther)
}

// RequireSession lets the request through only with a verified session token
// whose user is known to UserState
func (a *AuthController) RequireSession(next router.HandlerFunc) router.HandlerFunc {
	return func(ctx router.Context) error {
		token := NewCookieSessionStore(ctx, a.Cookie).Get(SessionTokenKey)
		if token == "" {
			return a.rejectSession(ctx, ErrMissingToken)
		}

		uid, err := a.Verifier.VerifyToken(ctx.Context(), token)
		if err != nil {
			return a.rejectSession(ctx, err)
		}

		user, err := a.Users.Lookup(ctx.Context(), uid)
		if err != nil {
			return a.rejectSession(ctx, err)
		}

		ctx.Locals(userLocalKey, user)
		return next(ctx)
	}
}

func (a *AuthController) BrowseShow(ctx router.Context) error {
	user, ok := CurrentUser(ctx)
	if !ok {
		return a.rejectSession(ctx, ErrUserNotFound)
	}

	return ctx.Render(a.Views.Browse, router.ViewContext{
		"brand":       a.Brand,
		"user_name":   user.Name(),
		"user_email":  user.Email,
		"logout_path": a.Routes.Logout,
	})
}

// CurrentUser returns the identity stored by RequireSession
func CurrentUser(ctx router.Context) (*UserIdentity, bool) {
	user, ok := ctx.Locals(userLocalKey).(*UserIdentity)
	return user, ok && user != nil
}

func (a *AuthController) renderLogin(ctx router.Context, form *FormState, keepPassword bool) error {
	title := "Sign In"
	if !form.IsSignIn() {
		title = "Sign Up"
	}

	password := ""
	if keepPassword {
		password = form.Password
	}

	data := router.ViewContext{
		"brand":         a.Brand,
		"title":         title,
		"login_path":    a.Routes.Login,
		"mode":          string(form.Mode),
		"is_sign_in":    form.IsSignIn(),
		"email":         form.Email,
		"password":      password,
		"display_name":  form.DisplayName,
		"error_message": form.ErrorMessage,
	}

	for k, v := range csrf.TemplateHelpers(ctx) {
		data[k] = v
	}

	return ctx.Render(a.Views.Login, data)
}

func (a *AuthController) rejectSession(ctx router.Context, err error) error {
	a.Logger.Info("session rejected for %s: %v", ctx.OriginalURL(), err)
	return ctx.Redirect(a.Routes.Login, fiber.StatusFound)
}

func (a *AuthController) defaultErrHandler(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = router.StatusInternalServerError
	}

	a.Logger.Error("auth controller error: %s (%s)", richErr.Message, richErr.Category)

	return ctx.Status(status).Render(a.Views.Error, router.ViewContext{
		"brand":   a.Brand,
		"message": richErr.Message,
	})
}
