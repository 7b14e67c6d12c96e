package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

var pngEncoder = png.Encoder{CompressionLevel: png.BestSpeed}

// EncodeFrame shrinks img by an integer factor and returns it as a PNG data URI.
func EncodeFrame(img image.Image, scale int) (string, error) {
	if scale < 1 {
		scale = 1
	}
	src := img
	if scale > 1 {
		b := img.Bounds()
		dst := image.NewRGBA(image.Rect(0, 0, max(1, b.Dx()/scale), max(1, b.Dy()/scale)))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		src = dst
	}
	var buf bytes.Buffer
	if err := pngEncoder.Encode(&buf, src); err != nil {
		return "", fmt.Errorf("encode frame: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
