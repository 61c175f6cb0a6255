package main

import "staycation/cmd"

// @title Staycation API
// @version 1.0
// @description Property rental and booking backend.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.apikey CronSecret
// @in header
// @name Authorization
func main() {
	cmd.Execute()
}
