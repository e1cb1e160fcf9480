package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var inMemory bool

var rootCmd = &cobra.Command{
	Use:   "roommeet",
	Short: "RoomMeet is a video conferencing backend and console client.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd.Context(), inMemory)
	},
}

func init() {
	rootCmd.Flags().BoolVar(&inMemory, "in-memory", false, "keep users and calls in memory instead of postgres")
}

func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
