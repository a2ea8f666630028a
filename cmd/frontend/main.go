package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Knight069/ecommerce-microservice/internal/clients/orderclient"
	"github.com/Knight069/ecommerce-microservice/internal/clients/productclient"
	"github.com/Knight069/ecommerce-microservice/internal/clients/userclient"
	"github.com/Knight069/ecommerce-microservice/internal/config"
	"github.com/Knight069/ecommerce-microservice/internal/frontend"
	"github.com/Knight069/ecommerce-microservice/internal/logging"
	"github.com/Knight069/ecommerce-microservice/internal/session"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(configuration.SESSION_SECRET, "SESSION_SECRET")

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	var store session.Store
	redisStore, err := session.NewRedisStore(configuration.REDIS_ADDRESS, configuration.REDIS_PASSWORD)
	if err != nil {
		log.Printf("redis unavailable (%v), sessions are in-process only", err)
		store = session.NewMemoryStore()
	} else {
		store = redisStore
	}

	renderer, err := frontend.NewRenderer()
	if err != nil {
		log.Fatalf("template error: %v", err)
	}

	e := echo.New()
	e.Renderer = renderer
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), logging.RequestLogger(logger))

	frontend.Register(e, &frontend.Handler{
		Sessions: session.NewManager(store, []byte(configuration.SESSION_SECRET)),
		Users:    userclient.NewClient(configuration.USER_SERVICE_URL),
		Products: productclient.NewClient(configuration.PRODUCT_SERVICE_URL),
		Orders:   orderclient.NewClient(configuration.ORDER_SERVICE_URL),
	})

	srv := &http.Server{
		Addr:         ":" + configuration.FRONTEND_PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if redisStore != nil {
		if err := redisStore.Close(); err != nil {
			log.Printf("redis close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
