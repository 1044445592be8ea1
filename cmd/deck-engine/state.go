package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/deck-engine/internal/checkpoint"
)

var stateCmd = &cobra.Command{
	Use:   "state <session-id>",
	Short: "Print the current state of a session",
	Long: `State prints the latest checkpoint of a session as YAML: the current
step, the outline, the slides, and any recorded error. With --history the
full checkpoint log is listed instead, one line per entry.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]
		history, _ := cmd.Flags().GetBool("history")

		store, err := checkpoint.Open(pipelineConfig().Store)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()

		if history {
			entries, err := store.History(ctx, sessionID)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Printf("%6d  %-14s  %-20s  %s\n", e.Seq, e.Stage, e.State.CurrentStep, e.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		}

		entry, err := store.Latest(ctx, sessionID)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(entry.State)
		if err != nil {
			return err
		}
		os.Stdout.Write(data)
		return nil
	},
}

func init() {
	stateCmd.Flags().Bool("history", false, "list the session's checkpoint log")

	rootCmd.AddCommand(stateCmd)
}
