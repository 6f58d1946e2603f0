package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/alexlevy0/qlip-app/internal/config"
	"github.com/alexlevy0/qlip-app/internal/detect"
	"github.com/alexlevy0/qlip-app/internal/ffmpeg"
	"github.com/alexlevy0/qlip-app/internal/logging"
	"github.com/alexlevy0/qlip-app/internal/pipeline"
)

var version = "dev"

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "qlip",
	Short: "qlip - auto-reframe shot list generation",
	Long:  "Derives an editable shot list for auto-reframing a video from face-detection analysis: per-shot timing, crop windows and behavior labels.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		cmd.SetContext(config.WithConfig(cmd.Context(), cfg))
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

var (
	analyzeWidth    int
	analyzeHeight   int
	analyzePreviews bool
	analyzeOut      string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [source]",
	Short: "Analyze a video and produce its shot list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		source := args[0]

		service, err := detect.NewHTTPClient(log.Logger, cfg.Detection.Endpoint, cfg.Detection.APIKey)
		if err != nil {
			return err
		}

		media, err := ffmpeg.New(log.Logger)
		if err != nil {
			// Fine as long as explicit dimensions are given and previews are off.
			log.Warn().Err(err).Msg("ffmpeg unavailable, probing disabled")
			media = nil
		}

		pipe, err := pipeline.New(log.Logger, cfg, service, media)
		if err != nil {
			return err
		}

		result, err := pipe.Analyze(cmd.Context(), source, pipeline.AnalyzeOptions{
			FrameWidth:  analyzeWidth,
			FrameHeight: analyzeHeight,
			Previews:    analyzePreviews,
			OutDir:      analyzeOut,
		})
		if err != nil {
			return err
		}

		for i, shot := range result.Shots {
			ev := log.Info().
				Int("shot", i).
				Float64("start", shot.Start).
				Float64("end", shot.End).
				Str("label", string(shot.Label))
			if shot.Crop != nil {
				ev = ev.Str("crop", fmt.Sprintf("%dx%d+%d+%d", shot.Crop.W, shot.Crop.H, shot.Crop.X, shot.Crop.Y))
			}
			ev.Msg("shot")
		}

		log.Info().
			Str("run_id", result.RunID).
			Int("shots", len(result.Shots)).
			Str("manifest", result.ManifestPath).
			Msg("analysis complete")

		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default config file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "./config.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		cfg := config.FromContext(cmd.Context())
		if err := cfg.Save(path); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("config written")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the qlip version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("qlip", version)
	},
}

func init() {
	analyzeCmd.Flags().IntVar(&analyzeWidth, "width", 0, "source frame width in pixels (probed when omitted)")
	analyzeCmd.Flags().IntVar(&analyzeHeight, "height", 0, "source frame height in pixels (probed when omitted)")
	analyzeCmd.Flags().BoolVar(&analyzePreviews, "previews", false, "write per-shot preview stills")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "output directory (default: work_dir)")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
