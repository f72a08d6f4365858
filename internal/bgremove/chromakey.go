package bgremove

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// Segmenter separates foreground from background. Implementations return an
// image of the same bounds whose alpha channel marks the foreground.
type Segmenter interface {
	Segment(img image.Image) (*image.NRGBA, error)
}

// GreenScreen is the backdrop the image prompts ask the model for.
var GreenScreen = color.RGBA{R: 0x00, G: 0xFF, B: 0x00, A: 0xFF}

// ChromaKey removes pixels close to Key in chroma space. Similarity and Blend
// follow ffmpeg's chromakey filter: distances up to Similarity become fully
// transparent, and the next Blend of distance ramps back to opaque.
type ChromaKey struct {
	Key        color.Color
	Similarity float64
	Blend      float64
}

// NewChromaKey keys out the green-screen backdrop.
func NewChromaKey(similarity, blend float64) ChromaKey {
	return ChromaKey{Key: GreenScreen, Similarity: similarity, Blend: blend}
}

func (c ChromaKey) Segment(img image.Image) (*image.NRGBA, error) {
	bounds := img.Bounds()
	out := image.NewNRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	key := c.Key
	if key == nil {
		key = GreenScreen
	}
	kr, kg, kb, _ := key.RGBA()
	_, keyU, keyV := color.RGBToYCbCr(uint8(kr>>8), uint8(kg>>8), uint8(kb>>8))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := out.Pix[(y-bounds.Min.Y)*out.Stride:]
		for x := 0; x < bounds.Dx(); x++ {
			px := row[x*4 : x*4+4]
			_, u, v := color.RGBToYCbCr(px[0], px[1], px[2])
			alpha := c.alpha(chromaDistance(u, v, keyU, keyV))
			px[3] = uint8(float64(px[3]) * alpha)
		}
	}
	return out, nil
}

// alpha maps a chroma distance in [0,1] to an opacity in [0,1].
func (c ChromaKey) alpha(diff float64) float64 {
	if c.Blend > 0.0001 {
		return clamp((diff-c.Similarity)/c.Blend, 0, 1)
	}
	if diff > c.Similarity {
		return 1
	}
	return 0
}

func chromaDistance(u, v, keyU, keyV uint8) float64 {
	du := float64(u) - float64(keyU)
	dv := float64(v) - float64(keyV)
	return math.Sqrt((du*du + dv*dv) / (255.0 * 255.0 * 2))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
