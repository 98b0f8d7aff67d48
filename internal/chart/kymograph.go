package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/icza/mjpeg"

	"chromatin/internal/sim"
)

const (
	kymographCellSize  = 8
	kymographBandRows  = 6
	kymographFrameRate = 12
	kymographQuality   = 90
)

var markColors = map[sim.Mark]color.RGBA{
	sim.Acetylated: {R: 0, G: 90, B: 181, A: 255},
	sim.Unmodified: {R: 220, G: 220, B: 220, A: 255},
	sim.Methylated: {R: 220, G: 50, B: 32, A: 255},
}

// KymographAVI writes an MJPEG video of the lattice, one frame per
// snapshot, sites left to right. Every frame must have the same
// number of sites.
func KymographAVI(frames [][]sim.Mark, path string) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to encode")
	}
	sites := len(frames[0])
	if sites == 0 {
		return fmt.Errorf("empty lattice frame")
	}
	for i, frame := range frames {
		if len(frame) != sites {
			return fmt.Errorf("frame %d has %d sites, want %d", i, len(frame), sites)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	width := sites * kymographCellSize
	height := kymographBandRows * kymographCellSize
	writer, err := mjpeg.New(path, int32(width), int32(height), int32(kymographFrameRate))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	options := &jpeg.Options{Quality: kymographQuality}
	for _, frame := range frames {
		img := frameImage(frame, width, height)
		if err := jpeg.Encode(&buf, img, options); err != nil {
			_ = writer.Close()
			return err
		}
		if err := writer.AddFrame(buf.Bytes()); err != nil {
			_ = writer.Close()
			return err
		}
		buf.Reset()
	}

	return writer.Close()
}

func frameImage(frame []sim.Mark, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, mark := range frame {
		cell := image.Rect(i*kymographCellSize, 0, (i+1)*kymographCellSize, height)
		draw.Draw(img, cell, &image.Uniform{markColors[mark]}, image.Point{}, draw.Src)
	}
	return img
}
