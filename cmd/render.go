package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"MashFM/config"
	"MashFM/core/analysis"
	"MashFM/core/audio"
	"MashFM/core/mixdown"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	renderPreset    string
	renderIntensity float64
	renderOutput    string
)

var renderCmd = &cobra.Command{
	Use:   "render [files...]",
	Short: "Render a mixdown of the given audio files offline",
	Long: `Decode the given audio files, mix them under the chosen preset and
write the result as a WAV file. Useful for trying presets without the server.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		decoder := audio.NewFFmpegDecoder(cfg.FFmpegPath, cfg.DecodeSampleRate)
		renderer := mixdown.NewRenderer(cfg.OutputSampleRate, analysis.ChromaKeyAnalyzer{})
		recipe := mixdown.PresetByID(renderPreset)

		var tracks []mixdown.RenderTrack
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				log.Fatalf("failed to read %s: %v", path, err)
			}
			asset, err := decoder.Decode(data)
			if err != nil {
				// One bad file should not sink the whole render.
				log.Printf("skipping %s: %v", path, err)
				continue
			}
			fmt.Printf("decoded %s: %.1fs @ %dHz\n", path, asset.DurationSeconds(), asset.SampleRate)
			tracks = append(tracks, mixdown.RenderTrack{Asset: asset, GainPercent: 100})
		}

		result, err := renderer.Render(context.Background(), uuid.NewString(), tracks, recipe, renderIntensity)
		if err != nil {
			log.Fatalf("render failed: %v", err)
		}

		if err := os.WriteFile(renderOutput, result.OutputWAV, 0644); err != nil {
			log.Fatalf("failed to write %s: %v", renderOutput, err)
		}
		fmt.Printf("wrote %s: %.1fs, %d BPM, %s, recipe %s\n",
			renderOutput, result.DurationSeconds, result.BPM, result.Key, recipe.ID)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderPreset, "preset", "p", "club-heat", "preset id (see /api/presets)")
	renderCmd.Flags().Float64VarP(&renderIntensity, "intensity", "i", 100, "master intensity percent (0-100)")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "mixdown.wav", "output WAV path")
}
