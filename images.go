package main

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/webp"

	// Decoders for image.DecodeConfig, here and in the layout probe.
	_ "image/gif"
	_ "image/jpeg"
)

// ---------------------------------------------------------------------------
// Image Download
// ---------------------------------------------------------------------------

const maxImageBytes = 20 << 20 // per-image download cap

// downloadTopImage fetches the article's designated top image, or nil when
// the download fails.
func downloadTopImage(rawURL string, verbose bool) *DownloadedImage {
	img, err := downloadImage(rawURL)
	if err != nil {
		if verbose {
			fmt.Printf("Skipping top image: %v\n", err)
		}
		return nil
	}
	return img
}

// downloadImages fetches up to maxImages body images, preserving URL order.
// Failed downloads are simply absent from the result.
func downloadImages(urls []string, maxImages int, skip map[string]bool, verbose bool) []DownloadedImage {
	var images []DownloadedImage
	for _, u := range urls {
		if len(images) >= maxImages {
			break
		}
		if skip[u] {
			continue
		}
		img, err := downloadImage(u)
		if err != nil {
			if verbose {
				fmt.Printf("Skipping image %s: %v\n", u, err)
			}
			continue
		}
		images = append(images, *img)
	}
	return images
}

// downloadImage fetches one image into a temp file and records its pixel
// dimensions.
func downloadImage(rawURL string) (*DownloadedImage, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %s", resp.Status)
	}

	data, err := readAllCapped(resp.Body, maxImageBytes)
	if err != nil {
		return nil, err
	}
	return storeImage(data)
}

// readAllCapped reads at most limit bytes and rejects longer bodies, so an
// oversized download can never be silently truncated into a corrupt image.
func readAllCapped(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("body exceeds %d byte limit", limit)
	}
	return data, nil
}

// storeImage sniffs the payload, converts it when needed and writes it to a
// temp file. WebP is re-encoded as PNG since the PDF backend only embeds
// PNG, JPEG and GIF. Separated from the HTTP fetch so tests can feed bytes
// directly.
func storeImage(data []byte) (*DownloadedImage, error) {
	mtype := mimetype.Detect(data)
	switch {
	case mtype.Is("image/png"), mtype.Is("image/jpeg"), mtype.Is("image/gif"):
		// embeddable as-is
	case mtype.Is("image/webp"):
		converted, err := webpToPNG(data)
		if err != nil {
			return nil, fmt.Errorf("webp conversion failed: %w", err)
		}
		data = converted
		mtype = mimetype.Detect(data)
	default:
		return nil, fmt.Errorf("unsupported content type %s", mtype)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("undecodable image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}

	f, err := os.CreateTemp("", "url2pdf-*"+mtype.Extension())
	if err != nil {
		return nil, err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, err
	}

	return &DownloadedImage{Path: f.Name(), Width: cfg.Width, Height: cfg.Height}, nil
}

// webpToPNG re-encodes a WebP payload as PNG.
func webpToPNG(data []byte) ([]byte, error) {
	img, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// cleanupImages removes the downloaded temp files.
func cleanupImages(images []DownloadedImage) {
	for _, img := range images {
		os.Remove(img.Path)
	}
}
