package main

import (
	"context"
	"flag"

	"github.com/jgivc/mediaindex/internal/app"
	"github.com/joho/godotenv"
)

func main() {
	cfgFileName := flag.String("c", "", "Path to optional config file")
	flag.Parse()

	_ = godotenv.Load()

	if err := app.New(*cfgFileName).Run(context.Background()); err != nil {
		panic(err)
	}
}
