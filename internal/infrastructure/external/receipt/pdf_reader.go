package receipt

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// maxPages bounds how many receipt pages are sent to the vision model.
const maxPages = 2

// pagesAsJPEG renders an uploaded receipt into JPEG page images. PDFs go
// through mupdf; JPEG and PNG uploads are passed along untouched or
// re-encoded.
func pagesAsJPEG(path string) ([][]byte, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("receipt file not found: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".jpg", ".jpeg", ".png":
		return readImageFile(path, ext)
	case ".pdf":
		return renderPDF(path)
	default:
		return nil, fmt.Errorf("unsupported receipt file type: %s", ext)
	}
}

func renderPDF(path string) ([][]byte, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pages := doc.NumPage()
	if pages > maxPages {
		pages = maxPages
	}

	var images [][]byte
	for page := 0; page < pages; page++ {
		img, err := doc.Image(page)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", page, err)
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
			return nil, fmt.Errorf("failed to encode page %d: %w", page, err)
		}
		images = append(images, buf.Bytes())
	}

	if len(images) == 0 {
		return nil, fmt.Errorf("no pages rendered from PDF")
	}
	return images, nil
}

func readImageFile(path, ext string) ([][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read receipt image: %w", err)
	}
	if ext == ".jpg" || ext == ".jpeg" {
		return [][]byte{data}, nil
	}

	// PNG uploads are re-encoded so the vision request sends one format.
	img, err := decodePNG(data)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode receipt image: %w", err)
	}
	return [][]byte{buf.Bytes()}, nil
}
