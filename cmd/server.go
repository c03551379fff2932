package cmd

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/brk3/habitboard/internal/config"
	"github.com/brk3/habitboard/internal/logger"
	"github.com/brk3/habitboard/internal/server"
	"github.com/brk3/habitboard/internal/storage/bolt"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return startServer()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func startServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.LogFormat, cfg.LogLevel)

	store, err := bolt.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	s, err := server.New(cfg, store)
	if err != nil {
		return err
	}

	logger.Info("Starting server", "addr", cfg.ListenAddr, "db", cfg.DBPath, "auth", cfg.AuthEnabled)
	return http.ListenAndServe(cfg.ListenAddr, s.Router())
}
