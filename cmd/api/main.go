package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/tasktrail/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tasktrail",
		Short: "TaskTrail API Server",
		Long:  `TaskTrail is a personal task tracker with streak and star rewards and an AI chat assistant backed by Groq with a DeepSeek fallback.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewSweepCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
