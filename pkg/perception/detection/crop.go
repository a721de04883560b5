package detection

import (
	"fmt"
	"image"

	"github.com/vigil-agent/go-vigil/pkg/perception"
	"gocv.io/x/gocv"
)

// CropJPEG cuts the region out of a JPEG frame and re-encodes it.
// Used to hand the background classifier just the face.
func CropJPEG(frame []byte, region image.Rectangle) ([]byte, error) {
	img, err := gocv.IMDecode(frame, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	bounds := image.Rect(0, 0, img.Cols(), img.Rows())
	crop, ok := perception.CropFace(bounds, region)
	if !ok {
		return nil, fmt.Errorf("region outside frame")
	}

	face := img.Region(crop)
	defer face.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, face)
	if err != nil {
		return nil, fmt.Errorf("encode crop: %w", err)
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	return data, nil
}
