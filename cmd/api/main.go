package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/goleaf/api-todo-app/cmd/api/commands"
)

// @title Todo API
// @version 1.0
// @description Personal task manager with smart tags: saved, rule based views over tasks.

// @license.name MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	rootCmd := &cobra.Command{
		Use:   "todo",
		Short: "Todo API Server",
		Long:  `Todo is a task manager whose smart tags select tasks by due date, priority, status, category, tags, tracked time, attachments and age.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewSmartTagCommand())
	rootCmd.AddCommand(commands.NewTokensCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
