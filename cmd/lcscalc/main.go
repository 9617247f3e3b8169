package main

import (
	"context"
	"os"

	"github.com/agbru/lcscalc/internal/app"
)

func main() {
	os.Exit(app.New(os.Stdout, os.Stderr).Run(context.Background(), os.Args[1:]))
}
