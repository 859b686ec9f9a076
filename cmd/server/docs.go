package main

//go:generate swag init -g cmd/server/main.go -o docs

// @title           Rakuda Seller Operations API
// @version         0.1.0
// @description     Price recommendations, simulation, and listing automation rules.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
