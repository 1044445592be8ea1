package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a presentation from a topic or reference files",
	Long: `Generate runs the full pipeline: plan an outline, expand it into slides,
refine image queries, enrich with images, and render a .pptx deck.

The pipeline pauses at its two review points. By default the outline and the
slide details are printed as YAML and you are asked to confirm; pass
--edit-outline or --edit-slides with a YAML file to substitute your edits,
or --yes to approve both review points unattended.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		files, _ := cmd.Flags().GetStringSlice("file")
		outlineFile, _ := cmd.Flags().GetString("edit-outline")
		slidesFile, _ := cmd.Flags().GetString("edit-slides")
		yes, _ := cmd.Flags().GetBool("yes")

		controller, store, err := buildController(os.Stderr)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()

		started, err := controller.Start(ctx, topic, files)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Session: %s\n", started.SessionID)

		outline := started.Outline
		if outlineFile != "" {
			if err := readYAML(outlineFile, &outline); err != nil {
				return fmt.Errorf("reading edited outline: %w", err)
			}
		} else {
			printYAML("Planned outline", outline)
			if !yes && !confirm("Approve outline and continue?") {
				fmt.Fprintf(os.Stderr, "Suspended. Continue with: deck-engine resume %s --outline <file>\n", started.SessionID)
				return nil
			}
		}

		slides, err := controller.ResumeAfterOutline(ctx, started.SessionID, outline)
		if err != nil {
			return err
		}

		if slidesFile != "" {
			if err := readYAML(slidesFile, &slides); err != nil {
				return fmt.Errorf("reading edited slides: %w", err)
			}
		} else {
			printYAML("Drafted slides", slides)
			if !yes && !confirm("Approve slides and render?") {
				fmt.Fprintf(os.Stderr, "Suspended. Continue with: deck-engine resume %s --slides <file>\n", started.SessionID)
				return nil
			}
		}

		result, err := controller.ResumeAfterDetails(ctx, started.SessionID, slides)
		if err != nil {
			return err
		}

		fmt.Println(result.ArtifactPath)
		return nil
	},
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}

func printYAML(heading string, v any) {
	fmt.Fprintf(os.Stderr, "%s:\n", heading)
	data, err := yaml.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  (unprintable: %v)\n", err)
		return
	}
	os.Stderr.Write(data)
}

func confirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func init() {
	generateCmd.Flags().String("topic", "", "presentation topic or free-form brief")
	generateCmd.Flags().StringSlice("file", nil, "reference file (.docx, .md, .txt); repeatable")
	generateCmd.Flags().String("edit-outline", "", "YAML file with the reviewed outline")
	generateCmd.Flags().String("edit-slides", "", "YAML file with the reviewed slides")
	generateCmd.Flags().Bool("yes", false, "approve both review points without prompting")

	rootCmd.AddCommand(generateCmd)
}
