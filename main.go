package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/tablewise/restaurant-api/cmd/app"
)

// @title        Restaurant API
// @version      1.0
// @description  Menu, inventory, orders, tables and reports for a restaurant.
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description "Bearer <token>" or "Token <token>"
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
