package scatter

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ImageFormat defines the output image encoding
type ImageFormat int

const (
	FormatJPEG ImageFormat = iota
	FormatPNG
)

func (f ImageFormat) String() string {
	switch f {
	case FormatJPEG:
		return "JPEG"
	case FormatPNG:
		return "PNG"
	default:
		return "Unknown"
	}
}

// formatForName selects the encoding from the output file extension.
// Anything that is not recognizably PNG encodes as JPEG.
func formatForName(name string) ImageFormat {
	if strings.EqualFold(filepath.Ext(name), ".png") {
		return FormatPNG
	}
	return FormatJPEG
}

// encodeImage writes img to w in the given format. Quality applies to
// JPEG only and follows the 1-100 convention.
func encodeImage(w io.Writer, img image.Image, format ImageFormat, quality int) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	default:
		return fmt.Errorf("unsupported image format %d", format)
	}
}

// writeImage encodes img to path, replacing any existing file
func writeImage(path string, img image.Image, format ImageFormat, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encodeImage(f, img, format, quality); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
