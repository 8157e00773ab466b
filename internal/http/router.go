package api

import (
	stdhttp "net/http"

	"devcamper/internal/domain"
	h "devcamper/internal/http/handlers"
	"devcamper/internal/http/middleware"
	"devcamper/internal/query"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Sources are the list endpoints backing advanced results.
type Sources struct {
	Bootcamps query.Source
	Courses   query.Source
	Reviews   query.Source
	Users     query.Source
}

// Deps is everything the router needs. Limiter, DB and UploadDir are optional.
type Deps struct {
	Log            logrus.FieldLogger
	Users          middleware.UserLoader
	Tokens         middleware.TokenVerifier
	Sources        Sources
	Auth           h.AuthHandler
	Bootcamps      h.BootcampHandler
	Courses        h.CourseHandler
	Reviews        h.ReviewHandler
	UserAdmin      h.UserHandler
	System         h.SystemHandler
	Limiter        middleware.Limiter
	Registry       *prometheus.Registry
	AllowedOrigins []string
	UploadDir      string
}

func NewRouter(d Deps) *gin.Engine {
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}
	metrics := middleware.NewMetrics(d.Registry)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		metrics.Handler(),
		middleware.Logger(d.Log),
		middleware.Errors(d.Log),
		middleware.Recovery(),
		middleware.CORS(d.AllowedOrigins),
		middleware.SecureHeaders(),
	)
	if d.Limiter != nil {
		r.Use(middleware.RateLimit(d.Limiter, d.Log))
	}

	if err := r.SetTrustedProxies(nil); err != nil {
		d.Log.WithError(err).Warn("failed to set trusted proxies")
	}

	r.OPTIONS("/*path", func(c *gin.Context) { c.AbortWithStatus(stdhttp.StatusNoContent) })
	r.NoRoute(h.NotFound)

	if d.UploadDir != "" {
		r.Static("/uploads", d.UploadDir)
	}

	protect := middleware.Protect(d.Users, d.Tokens)
	publisher := middleware.Authorize(domain.RolePublisher, domain.RoleAdmin)
	reviewer := middleware.Authorize(domain.RoleUser, domain.RoleAdmin)
	admin := middleware.Authorize(domain.RoleAdmin)

	api := r.Group("/api/v1")
	{
		api.GET("/health", d.System.Health)
		api.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))

		// Auth
		auth := api.Group("/auth")
		auth.POST("/register", d.Auth.Register)
		auth.POST("/login", d.Auth.Login)
		auth.GET("/logout", d.Auth.Logout)
		auth.GET("/me", protect, d.Auth.Me)
		auth.PUT("/updatedetails", protect, d.Auth.UpdateDetails)
		auth.PUT("/updatepassword", protect, d.Auth.UpdatePassword)
		auth.POST("/forgotpassword", d.Auth.ForgotPassword)
		auth.PUT("/resetpassword/:resettoken", d.Auth.ResetPassword)

		// Bootcamps
		bootcamps := api.Group("/bootcamps")
		bootcamps.GET("", middleware.AdvancedResults(d.Sources.Bootcamps, "courses"), d.Bootcamps.List)
		bootcamps.POST("", protect, publisher, d.Bootcamps.Create)
		bootcamps.GET("/radius/:zipcode/:distance", d.Bootcamps.WithinRadius)
		bootcamps.GET("/:id", d.Bootcamps.Get)
		bootcamps.PUT("/:id", protect, publisher, d.Bootcamps.Update)
		bootcamps.DELETE("/:id", protect, publisher, d.Bootcamps.Delete)
		bootcamps.PUT("/:id/photo", protect, publisher, d.Bootcamps.UploadPhoto)
		bootcamps.GET("/:id/catalog", d.Bootcamps.CatalogPDF)

		// Nested under a bootcamp
		bootcamps.GET("/:id/courses", d.Courses.List)
		bootcamps.POST("/:id/courses", protect, publisher, d.Courses.Create)
		bootcamps.GET("/:id/reviews", d.Reviews.List)
		bootcamps.POST("/:id/reviews", protect, reviewer, d.Reviews.Create)

		// Courses
		courses := api.Group("/courses")
		courses.GET("", middleware.AdvancedResults(d.Sources.Courses, "bootcamp"), d.Courses.List)
		courses.GET("/:id", d.Courses.Get)
		courses.PUT("/:id", protect, publisher, d.Courses.Update)
		courses.DELETE("/:id", protect, publisher, d.Courses.Delete)

		// Reviews
		reviews := api.Group("/reviews")
		reviews.GET("", middleware.AdvancedResults(d.Sources.Reviews, "bootcamp"), d.Reviews.List)
		reviews.GET("/:id", d.Reviews.Get)
		reviews.PUT("/:id", protect, reviewer, d.Reviews.Update)
		reviews.DELETE("/:id", protect, reviewer, d.Reviews.Delete)

		// Users (admin)
		users := api.Group("/users", protect, admin)
		users.GET("", middleware.AdvancedResults(d.Sources.Users), d.UserAdmin.List)
		users.POST("", d.UserAdmin.Create)
		users.GET("/:id", d.UserAdmin.Get)
		users.PUT("/:id", d.UserAdmin.Update)
		users.DELETE("/:id", d.UserAdmin.Delete)
	}

	return r
}
