package main

import (
	"context"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/traintrack/engine/src/common/geo"
	"github.com/traintrack/engine/src/common/utils"
	"github.com/traintrack/engine/src/http-api/api"
)

func main() {
	utils.InitLogger()
	defer utils.SyncLogger()
	log := utils.GetLogger()

	app := fiber.New()

	app.Use(func(c *fiber.Ctx) error {
		path := c.Path()
		method := c.Method()

		if path != "/health" {
			log.Infow("request", "method", method, "path", path, "status", c.Response().StatusCode())
		}

		return c.Next()
	})

	app.Use(cors.New())

	server, err := api.NewServer(geo.EnvProvider{})
	if err != nil {
		log.Fatalw("failed to start http api server", "error", err)
		return
	}
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	server.Start(ctx)

	api.RegisterHandlers(app, server)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	if err := app.Listen(":" + port); err != nil {
		log.Fatalw("fiber listen failed", "error", err)
	}
}
