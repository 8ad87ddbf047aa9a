package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Sidali-Djeghbal/hodory-attendance-system/config"
	"github.com/Sidali-Djeghbal/hodory-attendance-system/database"
	"github.com/Sidali-Djeghbal/hodory-attendance-system/routes"
)

func main() {
	cfg := config.Load()

	// Fail fast if the database is not reachable.
	database.Connect(cfg)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	routes.Register(e, cfg)

	addr := ":" + cfg.AppPort
	log.Printf("server listening at %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
