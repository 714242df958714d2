package pubadmin

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
	uploadsSubdir = "uploads"
)

var errUploadTooLarge = fmt.Errorf("file too large (max %dMB)", maxUploadSize>>20)

// processImage decodes an image from src, resizes it to maxImageWidth when
// wider, and encodes it as JPEG.
func processImage(src io.Reader, originalName string) (Image, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Image{}, nil, fmt.Errorf("decode image: %w", err)
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
		return Image{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	name := slugifyFilename(originalName)
	if name == "" {
		name = "image"
	}

	return Image{
		Filename:     name + ".jpg",
		OriginalName: originalName,
		Width:        w,
		Height:       h,
		Size:         buf.Len(),
		UploadedAt:   time.Now().UTC().Format(time.RFC3339),
	}, buf.Bytes(), nil
}

// slugifyFilename converts a filename (without extension) to a URL-safe slug.
func slugifyFilename(name string) string {
	ext := filepath.Ext(name)
	return Slugify(strings.TrimSuffix(name, ext))
}

func (a *App) uploadsDir() string {
	return filepath.Join(a.Config.StaticDir, uploadsSubdir)
}

// ensureUniqueFilename appends a counter until the name is free both on disk
// and in the database.
func (a *App) ensureUniqueFilename(img *Image) error {
	base := strings.TrimSuffix(img.Filename, ".jpg")
	candidate := img.Filename
	for counter := 2; ; counter++ {
		_, statErr := os.Stat(filepath.Join(a.uploadsDir(), candidate))
		taken, err := a.Store.ImageExists(candidate)
		if err != nil {
			return err
		}
		if statErr != nil && !taken {
			break
		}
		candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
	}
	img.Filename = candidate
	return nil
}

// saveUpload runs an uploaded file through the image pipeline, writes it
// under the uploads directory and records it in the library. The returned
// Image carries the public URL.
func (a *App) saveUpload(file *multipart.FileHeader) (Image, error) {
	if file.Size > maxUploadSize {
		return Image{}, errUploadTooLarge
	}
	src, err := file.Open()
	if err != nil {
		return Image{}, err
	}
	defer src.Close()

	img, data, err := processImage(src, file.Filename)
	if err != nil {
		return Image{}, err
	}
	if err := a.ensureUniqueFilename(&img); err != nil {
		return Image{}, err
	}
	if err := os.MkdirAll(a.uploadsDir(), 0o755); err != nil {
		return Image{}, fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(a.uploadsDir(), img.Filename), data, 0o644); err != nil {
		return Image{}, fmt.Errorf("write image: %w", err)
	}
	img.URL = BuildURL(a.Config.URL, "public", uploadsSubdir, img.Filename)
	if err := a.Store.SaveImage(img); err != nil {
		return Image{}, err
	}
	return img, nil
}

func (a *App) handleImageUpload(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return a.renderImageList(c, "", "No image file provided", http.StatusBadRequest)
	}
	img, err := a.saveUpload(file)
	if err != nil {
		c.Logger().Warnf("image upload %q: %v", file.Filename, err)
		return a.renderImageList(c, "", "Invalid image: "+err.Error(), http.StatusBadRequest)
	}
	a.recordActivity(c, "images", "create", img.Filename)
	return c.Redirect(http.StatusSeeOther, "/admin/images/?msg="+url.QueryEscape("Uploaded "+img.Filename))
}

func (a *App) handleImageDelete(c echo.Context) error {
	filename := c.Param("filename")
	if filename == "" || filepath.Base(filename) != filename || strings.HasPrefix(filename, ".") {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid filename")
	}

	path := filepath.Join(a.uploadsDir(), filename)
	_ = os.Remove(path) // ignore error if file already gone

	if err := a.Store.DeleteImage(filename); err != nil {
		return err
	}
	a.recordActivity(c, "images", "delete", filename)
	return c.Redirect(http.StatusSeeOther, "/admin/images/?msg="+url.QueryEscape("Deleted "+filename))
}

func (a *App) handleImageList(c echo.Context) error {
	return a.renderImageList(c, c.QueryParam("msg"), "", http.StatusOK)
}

func (a *App) renderImageList(c echo.Context, msg, errMsg string, code int) error {
	images, err := a.Store.ListImages()
	if err != nil {
		return err
	}
	lay := a.layout(c, "Images")
	lay.Flash = msg
	lay.Error = errMsg
	return RenderStatus(c, code, a.Views.Images(ImagesPage{Layout: lay, Images: images}))
}
