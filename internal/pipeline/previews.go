package pipeline

import (
	"context"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"time"

	"github.com/nfnt/resize"
	"github.com/rs/zerolog"

	"github.com/alexlevy0/qlip-app/internal/shots"
	"github.com/alexlevy0/qlip-app/pkg/util"
)

// generatePreviews extracts one still per shot at its midpoint and writes a
// downscaled JPEG next to the manifest. Stills are whole frames; the crop
// windows stay advisory for downstream tooling.
func (p *Pipeline) generatePreviews(ctx context.Context, logger zerolog.Logger, source string, manifest *shots.Manifest, outDir string) error {
	if p.media == nil {
		return fmt.Errorf("ffmpeg is unavailable")
	}
	if !util.FileExists(source) {
		return fmt.Errorf("previews require a local source file")
	}

	previewDir := filepath.Join(outDir, "previews")
	if err := util.EnsureDir(previewDir); err != nil {
		return err
	}

	maxWidth := p.config.Previews.MaxWidth
	if maxWidth <= 0 {
		maxWidth = 480
	}

	for i := range manifest.Shots {
		shot := &manifest.Shots[i]
		midpoint := time.Duration((shot.StartSec + shot.EndSec) / 2 * float64(time.Second))
		outPath := filepath.Join(previewDir, fmt.Sprintf("shot_%03d.jpg", shot.Index))

		if err := p.writePreview(ctx, source, midpoint, outPath, maxWidth); err != nil {
			util.CleanupFiles(outPath)
			return fmt.Errorf("shot %d preview: %w", shot.Index, err)
		}

		shot.Preview = outPath
		logger.Debug().Int("shot", shot.Index).Str("path", outPath).Msg("preview written")
	}

	return nil
}

func (p *Pipeline) writePreview(ctx context.Context, source string, at time.Duration, outPath string, maxWidth int) error {
	framePath := outPath + ".full.jpg"
	defer util.CleanupFiles(framePath)

	if err := p.media.ExtractFrame(ctx, source, at, framePath); err != nil {
		return err
	}

	f, err := os.Open(framePath)
	if err != nil {
		return err
	}
	img, err := jpeg.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}

	if img.Bounds().Dx() > maxWidth {
		img = resize.Resize(uint(maxWidth), 0, img, resize.Lanczos3)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}

	return nil
}
