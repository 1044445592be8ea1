// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the deck-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/deck-engine/internal/secrets"
	"github.com/pdiddy/deck-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, otherwise the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the deck-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "deck-engine",
	Short: "AI-assisted presentation generation pipeline",
	Long: `deck-engine turns a topic or reference documents into a finished .pptx
presentation through a staged pipeline: outline planning, slide expansion,
image advisory, visual enrichment, and rendering. The pipeline suspends at
two review points (after planning and after advisory) so a human can edit
the outline and the slide details before the deck is assembled.

Sessions are checkpointed in SQLite and survive process restarts; resume a
suspended session with the serve API or the generate command's edit flags.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./deck-engine.yaml or ~/.config/deck-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("deck-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "deck-engine"))
		}
	}

	viper.SetDefault("provider.model", "gpt-4o-mini")
	viper.SetDefault("image.timeout", 30*time.Second)
	viper.SetDefault("image.enable_search", true)
	viper.SetDefault("image.gen_model", "dall-e-3")
	viper.SetDefault("image.retry_delay", 5*time.Second)
	viper.SetDefault("render.output_dir", "output")
	viper.SetDefault("render.fetch_timeout", 30*time.Second)
	viper.SetDefault("store.path", "data/deck-engine.db")

	viper.SetEnvPrefix("DECK_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig assembles the full pipeline configuration from viper with
// secrets filling any keys the config file leaves empty.
func pipelineConfig() types.PipelineConfig {
	layout := types.DefaultLayoutPolicy()
	if tags := viper.GetStringSlice("render.layout.picture_layouts"); len(tags) > 0 {
		layout.PictureLayouts = layout.PictureLayouts[:0]
		for _, t := range tags {
			layout.PictureLayouts = append(layout.PictureLayouts, types.LayoutType(t))
		}
	}
	if viper.IsSet("render.layout.default_layout_index") {
		layout.DefaultLayoutIndex = viper.GetInt("render.layout.default_layout_index")
	}

	return types.PipelineConfig{
		Provider: types.ProviderConfig{
			AIConfig: types.AIConfig{
				Model:   viper.GetString("provider.model"),
				APIKey:  secretDefault("openai-api-key", viper.GetString("provider.api_key")),
				BaseURL: viper.GetString("provider.base_url"),
			},
		},
		Image: types.ImageConfig{
			Timeout:           viper.GetDuration("image.timeout"),
			UnsplashAccessKey: secretDefault("unsplash-access-key", viper.GetString("image.unsplash_access_key")),
			EnableSearch:      viper.GetBool("image.enable_search"),
			GenModel:          viper.GetString("image.gen_model"),
			GenAPIKey:         secretDefault("openai-api-key", viper.GetString("image.gen_api_key")),
			GenBaseURL:        viper.GetString("image.gen_base_url"),
			RetryDelay:        viper.GetDuration("image.retry_delay"),
		},
		Render: types.RenderConfig{
			OutputDir:        viper.GetString("render.output_dir"),
			FetchTimeout:     viper.GetDuration("render.fetch_timeout"),
			PlaceholderHosts: viper.GetStringSlice("render.placeholder_hosts"),
			Layout:           layout,
		},
		Store: types.StoreConfig{
			Path: viper.GetString("store.path"),
		},
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
