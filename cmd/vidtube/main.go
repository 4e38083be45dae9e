package main

import (
	"os"

	"github.com/vidtube/backend/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
