package main

import (
	"go.uber.org/fx"

	"github.com/mycodedstuff/pibot/internal/app"
)

func main() {
	fx.New(app.CreateApp()).Run()
}
