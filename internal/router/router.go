package router

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"invopay/docs"
	"invopay/internal/auth"
	"invopay/internal/config"
	apperrors "invopay/internal/errors"
	"invopay/internal/handler"
)

// CustomValidator adapts go-playground/validator to Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	clientHandler *handler.ClientHandler,
	companyHandler *handler.CompanyHandler,
	invoiceHandler *handler.InvoiceHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1")

	// Public routes
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/refresh", authHandler.Refresh)
	api.PUT("/confirm/:token", authHandler.ConfirmEmail)

	// Secured routes (require JWT authentication). Token verification is
	// delegated to the JWT service so revoked tokens are rejected too.
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		ParseTokenFunc: func(c echo.Context, tokenString string) (interface{}, error) {
			claims, err := jwtService.ValidateToken(tokenString)
			if err != nil {
				return nil, err
			}
			if blacklisted, _ := tokenStore.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID); blacklisted {
				return nil, errors.New("token revoked")
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			httpErr := apperrors.MapErrorToHTTP(apperrors.ErrInvalidToken)
			return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		},
	}))

	secured.POST("/logout", authHandler.Logout)
	secured.GET("/me", userHandler.Me)
	secured.PATCH("/me", userHandler.UpdateMe)
	secured.PUT("/users/:id/resend", authHandler.ResendConfirmation)

	secured.POST("/clients", clientHandler.Create)
	secured.GET("/clients", clientHandler.List)
	secured.GET("/clients/:id", clientHandler.Get)
	secured.PATCH("/clients/:id", clientHandler.Update)
	secured.DELETE("/clients/:id", clientHandler.Delete)

	secured.POST("/companies", companyHandler.Create)
	secured.GET("/companies", companyHandler.List)
	secured.GET("/companies/:id", companyHandler.Get)
	secured.PATCH("/companies/:id", companyHandler.Update)
	secured.DELETE("/companies/:id", companyHandler.Delete)

	secured.POST("/invoices", invoiceHandler.Create)
	secured.GET("/invoices", invoiceHandler.List)
	secured.GET("/invoices/:id", invoiceHandler.Get)
	secured.PATCH("/invoices/:id", invoiceHandler.Update)
	secured.DELETE("/invoices/:id", invoiceHandler.Delete)
	secured.POST("/invoices/:id/items", invoiceHandler.AddItem)
	secured.DELETE("/invoices/:id/items/:item_id", invoiceHandler.RemoveItem)
}
