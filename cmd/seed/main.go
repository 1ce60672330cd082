package main

import (
	"context"
	"flag"
	"os"
	"time"

	"bulletin/internal/bootstrap"
	"bulletin/internal/middleware"
	"bulletin/internal/seed"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.Users, "users", opts.Users, "number of users to create")
	flag.IntVar(&opts.Admins, "admins", opts.Admins, "how many of the users are admins")
	flag.IntVar(&opts.Requests, "requests", opts.Requests, "number of requests to create")
	flag.IntVar(&opts.MaxComments, "max-comments", opts.MaxComments, "maximum comments per request")
	flag.StringVar(&opts.Password, "password", opts.Password, "password for every generated account")
	flag.Parse()

	rt, err := bootstrap.Init()
	if err != nil {
		middleware.Logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	if err := seed.Run(rt.DB, opts); err != nil {
		middleware.Logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}
	middleware.Logger.Info("seeding complete",
		"users", opts.Users, "requests", opts.Requests)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = rt.Close(ctx)
}
