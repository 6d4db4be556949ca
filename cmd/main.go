package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"innkeeper/internal/caching"
	"innkeeper/internal/config"
	"innkeeper/internal/handlers"
	"innkeeper/internal/jobs/background"
	"innkeeper/internal/metrics"
	"innkeeper/internal/middleware"
	"innkeeper/internal/models"
	"innkeeper/internal/repositories"
	"innkeeper/internal/services"
	"innkeeper/pkg/database"
	"innkeeper/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("configuration error: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Server.Env, cfg.ServiceName); err != nil {
		os.Stderr.WriteString("logger init failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := database.NewPool(ctx, cfg.DB.GetDSN())
	cancel()
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()
	log.Info("database connected", zap.String("host", cfg.DB.Host), zap.String("db", cfg.DB.DBName))

	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := cacheSvc.Ping(context.Background()); err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}

	mediaSvc, err := services.NewMediaService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Bucket, cfg.Minio.UseSSL)
	if err != nil {
		log.Fatal("object storage client failed", zap.Error(err))
	}
	if err := mediaSvc.EnsureBucket(context.Background()); err != nil {
		log.Warn("media bucket check failed", zap.Error(err))
	}

	// Repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	roleRepo := repositories.NewRoleRepo(pool)
	permissionRepo := repositories.NewPermissionRepo(pool)
	rolePermissionRepo := repositories.NewRolePermissionRepo(pool)
	userRoleRepo := repositories.NewUserRoleRepo(pool)
	bindingRepo := repositories.NewModuleBindingRepo(pool)
	propertyRepo := repositories.NewPropertyRepo(pool)
	bookingRepo := repositories.NewBookingRepo(pool)
	iotDeviceRepo := repositories.NewIoTDeviceRepo(pool)
	seoRepo := repositories.NewSeoContentRepo(pool)
	cultureRepo := repositories.NewCultureContentRepo(pool)

	// Services
	tenantSvc := services.NewTenantService(tenantRepo, cacheSvc, cfg.Tenancy.CentralDomains)
	rbacSvc := services.NewRBACService(userRoleRepo, rolePermissionRepo, permissionRepo, roleRepo, cacheSvc, log)
	bindingSvc := services.NewModuleBindingService(bindingRepo, cacheSvc, log)
	authzSvc := services.NewAuthzService(rbacSvc, bindingRepo, cacheSvc, log)
	provisionSvc := services.NewProvisionService(rbacSvc, bindingSvc, log)
	authSvc := services.NewAuthService(userRepo, rbacSvc, cacheSvc, log, cfg.JWT.SigningKey, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	userSvc := services.NewUserService(userRepo)
	propertySvc := services.NewPropertyService(propertyRepo, log)
	bookingSvc := services.NewBookingService(bookingRepo, propertyRepo, log)
	iotSvc := services.NewIoTService(iotDeviceRepo, log)
	seoSvc := services.NewSeoService(seoRepo, log)
	cultureSvc := services.NewCultureService(cultureRepo, cacheSvc, log)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc)
	tenantHandlers := handlers.NewTenantHandlers(tenantSvc, provisionSvc)
	userHandlers := handlers.NewUserHandlers(userSvc)
	roleHandlers := handlers.NewRoleHandlers(rbacSvc, bindingSvc)
	propertyHandlers := handlers.NewPropertyHandlers(propertySvc, mediaSvc)
	bookingHandlers := handlers.NewBookingHandlers(bookingSvc)
	iotHandlers := handlers.NewIoTHandlers(iotSvc)
	seoHandlers := handlers.NewSeoHandlers(seoSvc)
	cultureHandlers := handlers.NewCultureHandlers(cultureSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	authz := middleware.NewAuthzMiddleware(authzSvc)

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(logger.RequestLogger())
	e.Use(metrics.Middleware())
	e.Use(middleware.TenantMiddleware(tenantSvc))

	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)
	e.GET("/metrics", metrics.Handler())

	// Central surface: the tenant directory only, answered only on a
	// central domain to the static admin credential.
	tenants := e.Group("/tenants", middleware.RequireCentralAdmin(tenantSvc, cfg.Tenancy.AdminAPIKey))
	tenants.POST("", tenantHandlers.CreateTenant)
	tenants.GET("", tenantHandlers.ListTenants)
	tenants.GET("/:id", tenantHandlers.GetTenant)
	tenants.PUT("/:id", tenantHandlers.UpdateTenant)
	tenants.DELETE("/:id", tenantHandlers.DeleteTenant)

	// Tenant-scoped surface.
	auth := e.Group("/auth", middleware.RequireTenant())
	auth.POST("/register", authHandlers.Register)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)
	auth.POST("/logout", authHandlers.Logout)

	api := e.Group("/api", middleware.RequireTenant(), middleware.JWTMiddleware(authSvc))

	users := api.Group("/users")
	users.POST("", userHandlers.CreateUser, authz.RequirePermission("manage:users"))
	users.GET("", userHandlers.ListUsers, authz.RequirePermission("manage:users"))
	users.GET("/:id", userHandlers.GetUser, authz.RequirePermission("manage:users"))
	users.PUT("/:id", userHandlers.UpdateUser, authz.RequirePermission("manage:users"))
	users.DELETE("/:id", userHandlers.DeleteUser, authz.RequirePermission("manage:users"))
	users.GET("/:id/access", roleHandlers.GetUserAccess, authz.RequirePermission("manage:roles"))
	users.POST("/:id/roles/:role_id", roleHandlers.AssignRole, authz.RequirePermission("manage:roles"))
	users.DELETE("/:id/roles/:role_id", roleHandlers.UnassignRole, authz.RequirePermission("manage:roles"))

	roles := api.Group("/roles", authz.RequirePermission("manage:roles"))
	roles.POST("", roleHandlers.CreateRole)
	roles.GET("", roleHandlers.ListRoles)
	roles.POST("/:id/permissions/:permission_id", roleHandlers.GrantPermission)
	roles.DELETE("/:id/permissions/:permission_id", roleHandlers.RevokePermission)
	roles.PUT("/:id/modules/:module", roleHandlers.SetModuleBinding)
	roles.GET("/:id/modules", roleHandlers.ListModuleBindings)
	roles.GET("/:id/modules/:module", roleHandlers.GetModuleBinding)
	roles.DELETE("/:id/modules/:module", roleHandlers.DeleteModuleBinding)

	permissions := api.Group("/permissions", authz.RequirePermission("manage:roles"))
	permissions.POST("", roleHandlers.CreatePermission)
	permissions.GET("", roleHandlers.ListPermissions)

	properties := api.Group("/properties")
	properties.GET("", propertyHandlers.ListProperties, authz.RequireModule(models.ModuleProperties, models.CapabilityRead))
	properties.GET("/:id", propertyHandlers.GetProperty, authz.RequireModule(models.ModuleProperties, models.CapabilityRead))
	properties.POST("", propertyHandlers.CreateProperty, authz.RequirePermission("manage:properties"))
	properties.PUT("/:id", propertyHandlers.UpdateProperty, authz.RequirePermission("manage:properties"))
	properties.DELETE("/:id", propertyHandlers.DeleteProperty, authz.RequirePermission("manage:properties"))
	properties.POST("/:id/images", propertyHandlers.UploadImage, authz.RequirePermission("manage:properties"))
	properties.GET("/:id/images/url", propertyHandlers.GetImageURL, authz.RequireModule(models.ModuleProperties, models.CapabilityRead))

	bookings := api.Group("/bookings")
	bookings.GET("", bookingHandlers.ListBookings, authz.RequireModule(models.ModuleBookings, models.CapabilityRead))
	bookings.GET("/:id", bookingHandlers.GetBooking, authz.RequireModule(models.ModuleBookings, models.CapabilityRead))
	bookings.POST("", bookingHandlers.CreateBooking, authz.RequireModule(models.ModuleBookings, models.CapabilityRead))
	bookings.POST("/:id/confirm", bookingHandlers.ConfirmBooking, authz.RequirePermission("manage:bookings"))
	bookings.POST("/:id/cancel", bookingHandlers.CancelBooking, authz.RequireModule(models.ModuleBookings, models.CapabilityWrite))

	iot := api.Group("/iot/devices")
	iot.GET("", iotHandlers.ListDevices, authz.RequireModule(models.ModuleIoT, models.CapabilityRead))
	iot.GET("/:id", iotHandlers.GetDevice, authz.RequireModule(models.ModuleIoT, models.CapabilityRead))
	iot.POST("", iotHandlers.RegisterDevice, authz.RequirePermission("manage:iot"))
	iot.DELETE("/:id", iotHandlers.DeleteDevice, authz.RequirePermission("manage:iot"))
	iot.POST("/:id/state", iotHandlers.ReportState, authz.RequireModule(models.ModuleIoT, models.CapabilityRead))
	iot.POST("/:id/control", iotHandlers.ControlDevice, authz.RequireModule(models.ModuleIoT, models.CapabilityControl))

	seo := api.Group("/seo")
	seo.GET("", seoHandlers.ListContent, authz.RequireModule(models.ModuleSeo, models.CapabilityRead))
	seo.GET("/:property_id", seoHandlers.GetContent, authz.RequireModule(models.ModuleSeo, models.CapabilityRead))
	seo.PUT("", seoHandlers.UpsertContent, authz.RequirePermission("manage:seo"))
	seo.DELETE("/:id", seoHandlers.DeleteContent, authz.RequirePermission("manage:seo"))

	culture := api.Group("/culture")
	culture.GET("", cultureHandlers.ListContent, authz.RequireModule(models.ModuleCulture, models.CapabilityRead))
	culture.GET("/:id", cultureHandlers.GetContent, authz.RequireModule(models.ModuleCulture, models.CapabilityRead))
	culture.POST("", cultureHandlers.CreateContent, authz.RequirePermission("manage:culture"))
	culture.PUT("/:id", cultureHandlers.UpdateContent, authz.RequirePermission("manage:culture"))
	culture.DELETE("/:id", cultureHandlers.DeleteContent, authz.RequirePermission("manage:culture"))

	scheduler, err := background.NewJobScheduler(iotSvc, bookingSvc, log)
	if err != nil {
		log.Fatal("scheduler init failed", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server start failed", zap.Error(err))
		}
	}()
	log.Info("server started", zap.String("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}
