package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/deck-engine/pkg/types"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <session-id>",
	Short: "Resume a suspended session with reviewed edits",
	Long: `Resume continues a suspended session from one of the two review points.
Pass --outline with a YAML outline file to approve the plan and draft the
slides, or --slides with a YAML slide file to approve the details and render
the deck. Exactly one of the two must be given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]
		outlineFile, _ := cmd.Flags().GetString("outline")
		slidesFile, _ := cmd.Flags().GetString("slides")

		if (outlineFile == "") == (slidesFile == "") {
			return fmt.Errorf("exactly one of --outline or --slides is required")
		}

		controller, store, err := buildController(os.Stderr)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()

		if outlineFile != "" {
			var outline types.Outline
			if err := readYAML(outlineFile, &outline); err != nil {
				return fmt.Errorf("reading outline: %w", err)
			}
			slides, err := controller.ResumeAfterOutline(ctx, sessionID, outline)
			if err != nil {
				return err
			}
			printYAML("Drafted slides", slides)
			fmt.Fprintf(os.Stderr, "Suspended. Review the slides, then resume with --slides.\n")
			return nil
		}

		var slides []types.Slide
		if err := readYAML(slidesFile, &slides); err != nil {
			return fmt.Errorf("reading slides: %w", err)
		}
		result, err := controller.ResumeAfterDetails(ctx, sessionID, slides)
		if err != nil {
			return err
		}
		fmt.Println(result.ArtifactPath)
		return nil
	},
}

func init() {
	resumeCmd.Flags().String("outline", "", "YAML file with the reviewed outline")
	resumeCmd.Flags().String("slides", "", "YAML file with the reviewed slides")

	rootCmd.AddCommand(resumeCmd)
}
