// launching the HTTP server and the selected comment storage
package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/WB_L3/6/config"
	"github.com/ds124wfegd/WB_L3/6/internal/database"
	"github.com/ds124wfegd/WB_L3/6/internal/service"
	"github.com/ds124wfegd/WB_L3/6/internal/transport"
	"github.com/ds124wfegd/WB_L3/6/pkg/postgres"
	"github.com/ds124wfegd/WB_L3/6/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	var repo database.Repository

	switch cfg.Storage.Type {
	case "redis":
		redisClient := redis.NewRedisClient(&cfg.Redis)
		defer redisClient.Close()

		redisRepo, err := database.NewRedisRepository(context.Background(), redisClient)
		if err != nil {
			logrus.Fatalf("Failed to initialize redis storage: %v", err)
		}
		repo = redisRepo
		logrus.Info("Using redis storage")
	case "postgres":
		db, err := postgres.NewPostgresDB(&cfg.Database)
		if err != nil {
			logrus.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()

		if err := postgres.RunMigrations(db); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		repo = database.NewPostgresRepository(db)
		logrus.Info("Using postgres storage")
	default:
		repo = database.NewMemoryRepository()
		logrus.Info("Using in-memory storage")
	}

	commentService := service.NewCommentService(repo)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(commentService)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
