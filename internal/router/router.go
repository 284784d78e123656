package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"scholarchat/internal/auth"
	"scholarchat/internal/config"
	"scholarchat/internal/handler"
	"scholarchat/internal/session"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	sessions session.Store,
	authHandler *handler.AuthHandler,
	chatHandler *handler.ChatHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public routes: these create sessions rather than require them.
	e.GET("/", authHandler.SignupPage)
	e.POST("/", authHandler.Signup)
	e.GET("/login", authHandler.LoginPage)
	e.POST("/login", authHandler.Login)

	// Session routes: the cookie token identifies a server-side session
	// record; stage checks happen per handler.
	flow := e.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "cookie:" + auth.CookieName,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return &auth.Claims{}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, echo.Map{"error": "login required", "next": "/"})
		},
	}), auth.SessionMiddleware(sessions))

	flow.GET("/verify", authHandler.VerifyPage)
	flow.POST("/verify", authHandler.Verify)
	flow.GET("/details", authHandler.DetailsPage)
	flow.POST("/details", authHandler.Details)
	flow.GET("/chat", chatHandler.State)
	flow.POST("/chat", chatHandler.Send)
	flow.GET("/logout", authHandler.Logout)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
