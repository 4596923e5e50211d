package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"regexp"
	"strconv"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/lacegiovanni17/event-ticket-BE/src/allocator"
	"github.com/lacegiovanni17/event-ticket-BE/src/boot"
	"github.com/lacegiovanni17/event-ticket-BE/src/config"
	"github.com/lacegiovanni17/event-ticket-BE/src/middlewares"
	"github.com/lacegiovanni17/event-ticket-BE/src/types"
	"github.com/lacegiovanni17/event-ticket-BE/src/utils"
)

const (
	apiPrefix string = "/api/v1"
)

var eventStatusValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	status, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return types.EventStatus(status).Valid()
}

func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("eventstatus", eventStatusValidatorFunc)
	}
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		mm := os.Getenv("MAINTENANCE_MODE")
		if mm == "" {
			return
		}
		on, err := strconv.ParseBool(mm)
		if err != nil || on {
			err := errors.New("server is under maintenance")
			log.Println(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, err.Error())
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

func corsMiddleware() gin.HandlerFunc {
	if config.IsLocal() {
		return cors.Default()
	}
	appHost := os.Getenv("APP_HOST")
	cc := cors.DefaultConfig()
	cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "HEAD")
	cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization")
	cc.AllowOriginFunc = func(origin string) bool {
		if appHost == "" {
			return false
		}
		match, _ := regexp.MatchString(appHost, origin)
		return match
	}
	cc.AllowCredentials = true
	cc.AllowAllOrigins = false
	return cors.New(cc)
}

// registerRoutes mounts the API. auth guards every route that needs a caller.
func registerRoutes(router *gin.Engine, alloc *allocator.Allocator, auth gin.HandlerFunc) {
	public := apiv1Group(router)
	guestUserHandlers(public)
	publicEventHandlers(public, alloc)

	authorized := router.Group(apiPrefix)
	authorized.Use(auth)
	{
		authorized = userHandlers(authorized)
		authorized = eventHandlers(authorized, alloc)
	}
}

func initLogger() {
	if os.Getenv("LOG_TO_STDOUT") == "true" {
		return
	}
	cwd, _ := os.Getwd()
	logsDir := path.Join(cwd, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		log.Printf("Could not create logs directory: %s\n", err.Error())
		return
	}
	serverLogs := path.Join(logsDir, "server.log")
	apiLogs := path.Join(logsDir, "api.log")
	gin.ForceConsoleColor()

	f, err := os.Create(apiLogs)
	if err != nil {
		log.Printf("Could not create api log: %s\n", err.Error())
		return
	}
	gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	log.SetOutput(&lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

func main() {
	if config.IsLocal() {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}
	initLogger()
	if utils.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	if err := boot.InitSecrets(ctx); err != nil {
		log.Fatalf("Failed to load secrets: %s", err)
	}
	db := boot.InitDb()
	publisher, closeBroker, err := boot.InitBroker(ctx, db)
	if err != nil {
		log.Fatalf("Failed to initialize broker: %s", err)
	}
	defer closeBroker()

	alloc := allocator.New(db, publisher, allocator.DefaultOptions())
	boot.InitScheduler(alloc)
	defer boot.StopScheduler()

	router := setupRouter()
	router.Use(corsMiddleware())
	registerValidations()
	router = maintenanceModeMiddleware(router)
	registerRoutes(router, alloc, middlewares.AuthMiddleware)

	if err := router.Run(":" + config.Port()); err != nil {
		log.Fatalf("Failed to start server: %s", err)
	}
}
