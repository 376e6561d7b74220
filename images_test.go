package main

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func encodeTestImage(t *testing.T, w, h int, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func pngBytes(t *testing.T, w, h int) []byte {
	return encodeTestImage(t, w, h, func(buf *bytes.Buffer, img image.Image) error {
		return png.Encode(buf, img)
	})
}

func jpegBytes(t *testing.T, w, h int) []byte {
	return encodeTestImage(t, w, h, func(buf *bytes.Buffer, img image.Image) error {
		return jpeg.Encode(buf, img, nil)
	})
}

func TestStoreImagePNG(t *testing.T) {
	img, err := storeImage(pngBytes(t, 64, 48))
	if err != nil {
		t.Fatalf("storeImage() error = %v", err)
	}
	defer os.Remove(img.Path)

	if img.Width != 64 || img.Height != 48 {
		t.Errorf("dimensions = %dx%d, want 64x48", img.Width, img.Height)
	}
	if !strings.HasSuffix(img.Path, ".png") {
		t.Errorf("path = %q, want .png extension", img.Path)
	}
	if _, err := os.Stat(img.Path); err != nil {
		t.Errorf("temp file missing: %v", err)
	}
}

func TestStoreImageJPEG(t *testing.T) {
	img, err := storeImage(jpegBytes(t, 32, 32))
	if err != nil {
		t.Fatalf("storeImage() error = %v", err)
	}
	defer os.Remove(img.Path)

	if img.Width != 32 || img.Height != 32 {
		t.Errorf("dimensions = %dx%d, want 32x32", img.Width, img.Height)
	}
}

func TestReadAllCapped(t *testing.T) {
	t.Run("within limit", func(t *testing.T) {
		data, err := readAllCapped(strings.NewReader("0123456789"), 10)
		if err != nil {
			t.Fatalf("readAllCapped() error = %v", err)
		}
		if string(data) != "0123456789" {
			t.Errorf("data = %q", data)
		}
	})

	t.Run("over limit is rejected", func(t *testing.T) {
		if _, err := readAllCapped(strings.NewReader("0123456789X"), 10); err == nil {
			t.Error("readAllCapped() expected error for oversized body")
		}
	})
}

func TestStoreImageUnsupported(t *testing.T) {
	if _, err := storeImage([]byte("<html>not an image</html>")); err == nil {
		t.Fatal("storeImage() expected error for non-image payload")
	}
}

func TestDownloadImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.png", "/b.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(pngBytes(t, 20, 10))
		case "/text":
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("plain text"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	urls := []string{
		srv.URL + "/a.png",
		srv.URL + "/missing.png",
		srv.URL + "/text",
		srv.URL + "/b.png",
	}

	t.Run("failed downloads are absent", func(t *testing.T) {
		images := downloadImages(urls, 10, nil, false)
		defer cleanupImages(images)

		if len(images) != 2 {
			t.Fatalf("got %d images, want 2", len(images))
		}
		for _, img := range images {
			if img.Width != 20 || img.Height != 10 {
				t.Errorf("dimensions = %dx%d, want 20x10", img.Width, img.Height)
			}
		}
	})

	t.Run("max images cap", func(t *testing.T) {
		images := downloadImages(urls, 1, nil, false)
		defer cleanupImages(images)

		if len(images) != 1 {
			t.Fatalf("got %d images, want 1", len(images))
		}
	})

	t.Run("skip set", func(t *testing.T) {
		skip := map[string]bool{srv.URL + "/a.png": true}
		images := downloadImages(urls, 10, skip, false)
		defer cleanupImages(images)

		if len(images) != 1 {
			t.Fatalf("got %d images, want 1", len(images))
		}
	})
}

func TestDownloadTopImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/top.png" {
			w.Header().Set("Content-Type", "image/png")
			w.Write(pngBytes(t, 100, 40))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	img := downloadTopImage(srv.URL+"/top.png", false)
	if img == nil {
		t.Fatal("downloadTopImage() returned nil for valid image")
	}
	defer os.Remove(img.Path)
	if img.Width != 100 || img.Height != 40 {
		t.Errorf("dimensions = %dx%d, want 100x40", img.Width, img.Height)
	}

	if got := downloadTopImage(srv.URL+"/gone.png", false); got != nil {
		t.Errorf("downloadTopImage() = %+v for failed download, want nil", got)
	}
}

func TestCleanupImages(t *testing.T) {
	img, err := storeImage(pngBytes(t, 8, 8))
	if err != nil {
		t.Fatal(err)
	}

	cleanupImages([]DownloadedImage{*img})

	if _, err := os.Stat(img.Path); !os.IsNotExist(err) {
		t.Errorf("temp file still exists after cleanup: %v", err)
	}
}
