package mask

import (
	"errors"
	"fmt"
	"image"
	"io/fs"

	"github.com/disintegration/imaging"
)

// Threshold is the channel value a pixel has to exceed in red, green and blue
// to count as background.
const Threshold = 240

var (
	ErrNotFound    = fmt.Errorf("image not found: %w", fs.ErrNotExist)
	ErrUnsupported = errors.New("unsupported image format, png required")
)

// Apply makes every light pixel fully transparent and returns how many were
// changed. Color channels are left untouched.
func Apply(img *image.NRGBA, threshold uint8) int {
	var count int

	bounds := img.Bounds()

	for y := 0; y < bounds.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+bounds.Dx()*4]

		for i := 0; i < len(row); i += 4 {
			if row[i] > threshold && row[i+1] > threshold && row[i+2] > threshold {
				if row[i+3] != 0 {
					count++
				}

				row[i+3] = 0
			}
		}
	}

	return count
}

// ProcessFile masks the PNG at path and writes it back to the same path.
// Other formats are rejected since they cannot keep the alpha channel.
func ProcessFile(path string, threshold uint8) (int, error) {
	format, err := imaging.FormatFromFilename(path)

	if err != nil || format != imaging.PNG {
		return 0, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}

	src, err := imaging.Open(path)

	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		return 0, err
	}

	img := imaging.Clone(src)

	count := Apply(img, threshold)

	if err := imaging.Save(img, path); err != nil {
		return 0, err
	}

	return count, nil
}
