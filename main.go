package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"insightlink/backend/api/handler"
	"insightlink/backend/api/middleware"
	"insightlink/backend/api/route"
	"insightlink/backend/common"
	"insightlink/backend/model"
	"insightlink/backend/service"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
)

func main() {
	flag.Parse()
	if *common.PrintVersion {
		println(common.Version)
		os.Exit(0)
	}
	if *common.PrintHelpFlag {
		common.PrintHelp()
		os.Exit(0)
	}
	common.SetupLog()
	common.SysLog(common.SystemName + " " + common.Version + " started")
	if os.Getenv("GIN_MODE") != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := common.LoadConfigFile(); err != nil {
		common.FatalLog(err)
	}
	if err := common.InitRedisClient(); err != nil {
		common.FatalLog(err)
	}
	if err := model.InitDB(); err != nil {
		common.FatalLog(err)
	}
	defer func() {
		if err := model.CloseDB(); err != nil {
			common.FatalLog(err)
		}
	}()
	service.InitServices()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := service.NewStorage(ctx)
	if err != nil {
		common.SysError("object storage not configured, uploads are disabled: " + err.Error())
	} else {
		handler.SetStorage(store)
	}

	service.StartMailWorker(ctx)
	service.StartAdminSummaryLoop(ctx)

	server := gin.New()
	server.Use(gin.Recovery())
	server.Use(middleware.CORS())
	server.Use(middleware.LangMiddleware())

	if common.RedisEnabled {
		opt := common.ParseRedisOption()
		sessionStore, err := redis.NewStore(opt.MinIdleConns, "tcp", opt.Addr, opt.Username, opt.Password, []byte(common.SessionSecret))
		if err != nil {
			common.FatalLog("failed to create redis session store: " + err.Error())
		}
		server.Use(sessions.Sessions("session", sessionStore))
	} else {
		sessionStore := cookie.NewStore([]byte(common.SessionSecret))
		server.Use(sessions.Sessions("session", sessionStore))
	}

	route.SetRouter(server)
	server.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"success": false,
			"message": "API route not found",
		})
	})

	setupGracefulShutdown(cancel)

	port := strconv.Itoa(*common.Port)
	common.SysLog("Server listening on port: " + port)
	if err := server.Run(":" + port); err != nil {
		log.Fatal("failed to start server: " + err.Error())
	}
}

func setupGracefulShutdown(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		common.SysLog("Shutting down...")
		cancel()
		if err := model.CloseDB(); err != nil {
			common.SysError("error closing database: " + err.Error())
		}
		os.Exit(0)
	}()
}
