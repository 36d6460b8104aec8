package main

import (
	"os"

	"github.com/spf13/cobra"
)

// @title Stormhead Comments API
// @version 1.0
// @description Threaded comments on posts with images and likes.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

var rootCommand = &cobra.Command{
	Use:   "backend",
	Short: "backend",
	Long:  "",
}

func main() {
	err := rootCommand.Execute()
	if err != nil {
		os.Exit(1)
	}
}
