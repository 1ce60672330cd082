package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bulletin/internal/bootstrap"
	"bulletin/internal/cache"
	"bulletin/internal/middleware"
	"bulletin/internal/server"
)

func main() {
	rt, err := bootstrap.Init()
	if err != nil {
		middleware.Logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	srv := server.New(rt.Cfg, rt.DB, cache.GetClient())

	go func() {
		middleware.Logger.Info("server starting", "port", rt.Cfg.Port, "env", rt.Cfg.Env)
		if err := srv.Listen(); err != nil {
			middleware.Logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	middleware.Logger.Info("shutting down")
	if err := srv.ShutdownWithTimeout(10 * time.Second); err != nil {
		middleware.Logger.Error("shutdown error", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rt.Close(ctx); err != nil {
		middleware.Logger.Error("runtime close error", "error", err)
	}
}
