package model

import "context"

// MaxImageSize is the default upload bound.
const MaxImageSize = 5 << 20

// Accepted image content types and the extensions they are archived with.
var ImageFormats = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// Image is an uploaded picture with its detected content type.
type Image struct {
	Data        []byte
	ContentType string
	FileName    string
}

// Describer produces a natural-language description of an image.
type Describer interface {
	Describe(ctx context.Context, image Image) (string, error)
}

// Analysis is the result of a successful analyze request.
type Analysis struct {
	Description string        `json:"description"`
	Usage       UsageSnapshot `json:"usage"`
}
