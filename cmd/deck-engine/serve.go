package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deck-engine/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the session HTTP API",
	Long: `Serve exposes the pipeline over HTTP. Clients start sessions, receive
the planned outline, post reviewed edits at the two interrupt points, and
fetch session state or an HTML preview of the deck.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		controller, store, err := buildController(os.Stderr)
		if err != nil {
			return err
		}
		defer store.Close()

		srv := server.New(controller, logger)
		logger.Info("listening", "addr", addr)
		if err := http.ListenAndServe(addr, srv.Router()); err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")

	rootCmd.AddCommand(serveCmd)
}
