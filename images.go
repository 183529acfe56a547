package buildsite

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	maxImageWidth  = 1200
	jpegQuality    = 80
	maxImageSize   = 10 << 20 // 10MB
	maxResumeSize  = 5 << 20  // 5MB
	bodyLimit      = "12M"
	imagesURLPath  = "/uploads/images/"
	resumesURLPath = "/uploads/resumes/"
)

// processImage decodes an image from src, shrinks it to maxImageWidth if
// wider, and re-encodes it as JPEG. It returns the encoded bytes and the final
// dimensions.
func processImage(src io.Reader) ([]byte, int, int, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxImageWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, 0, 0, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), w, h, nil
}

type imageResponse struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (a *App) handleImageUpload(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return BadRequest(c, "No image file provided", map[string]string{"image": "is required"})
	}
	if file.Size > maxImageSize {
		return BadRequest(c, "File too large (max 10MB)", map[string]string{"image": "must be 10MB or smaller"})
	}

	src, err := file.Open()
	if err != nil {
		return InternalError(c, err)
	}
	defer src.Close()

	data, w, h, err := processImage(src)
	if err != nil {
		return BadRequest(c, "Invalid image", map[string]string{"image": err.Error()})
	}

	name := uuid.NewString() + ".jpg"
	if err := os.WriteFile(filepath.Join(a.imagesDir(), name), data, 0o644); err != nil {
		return InternalError(c, fmt.Errorf("write image: %w", err))
	}
	return Created(c, imageResponse{URL: mountPrefix(c) + imagesURLPath + name, Width: w, Height: h}, "Image uploaded")
}

// removeImage deletes a stored featured image referenced by url. URLs that do
// not point at this server's image directory are ignored.
func (a *App) removeImage(url string) {
	i := strings.LastIndex(url, imagesURLPath)
	if i < 0 {
		return
	}
	name := path.Base(url[i+len(imagesURLPath):])
	if name == "." || name == "/" || name == "" {
		return
	}
	_ = os.Remove(filepath.Join(a.imagesDir(), name))
}
