package main

import (
	"github.com/RicardoFlores201/appUni-sub000/internal/app"
	"github.com/RicardoFlores201/appUni-sub000/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
