package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"campusshare/internal/config"
	"campusshare/internal/handler"
	"campusshare/internal/repository"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	userRepo repository.UserRepository,
	authHandler *handler.AuthHandler,
	verificationHandler *handler.VerificationHandler,
	itemHandler *handler.ItemHandler,
	transactionHandler *handler.TransactionHandler,
	userHandler *handler.UserHandler,
	notificationHandler *handler.NotificationHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/items", itemHandler.Browse)
	api.GET("/items/:id", itemHandler.Show)
	api.GET("/users/:id", userHandler.PublicProfile)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
	}))

	secured.GET("/me", func(c echo.Context) error {
		token, ok := c.Get("user").(*jwt.Token)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		claims, _ := token.Claims.(jwt.MapClaims)
		return c.JSON(http.StatusOK, echo.Map{"token_claims": claims})
	})

	// Verification routes
	secured.POST("/verification", verificationHandler.Submit)
	secured.GET("/verification/status", verificationHandler.Status)

	// Listing and requesting are gated on a verified account
	verified := RequireVerified(userRepo)
	secured.POST("/items", itemHandler.Create, verified)
	secured.POST("/items/:id/request", transactionHandler.Request, verified)

	// Item routes
	secured.PUT("/items/:id", itemHandler.Update)
	secured.DELETE("/items/:id", itemHandler.Delete)

	// Transaction routes
	secured.GET("/transactions/:id", transactionHandler.Show)
	secured.PUT("/transactions/:id/approve", transactionHandler.Approve)
	secured.PUT("/transactions/:id/meeting", transactionHandler.Meeting)
	secured.PUT("/transactions/:id/complete", transactionHandler.Complete)
	secured.POST("/transactions/:id/proof", transactionHandler.UploadProof)
	secured.PUT("/transactions/:id/cancel", transactionHandler.Cancel)

	// Profile routes
	secured.GET("/user/profile", userHandler.GetProfile)
	secured.PUT("/user/profile", userHandler.UpdateProfile)
	secured.GET("/user/items", itemHandler.MyItems)
	secured.GET("/user/requests", transactionHandler.MyRequests)
	secured.GET("/user/donations", transactionHandler.MyDonations)

	// Notification routes
	secured.GET("/notifications", notificationHandler.List)
	secured.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	secured.PUT("/notifications/:id/read", notificationHandler.MarkRead)
	secured.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
