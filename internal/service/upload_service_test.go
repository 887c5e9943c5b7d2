package service

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/protakeoff/marketplace/internal/config"
	"github.com/protakeoff/marketplace/internal/constants"
)

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file failed: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer failed: %v", err)
	}

	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parse multipart failed: %v", err)
	}
	return req.MultipartForm.File["file"][0]
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png failed: %v", err)
	}
	return buf.Bytes()
}

func newTestUploadService(t *testing.T) (*UploadService, string) {
	t.Helper()
	dir := t.TempDir()
	svc := NewUploadService(config.UploadConfig{
		Dir:               dir,
		PublicPrefix:      "/uploads",
		MaxSize:           1 << 20,
		AllowedTypes:      []string{"image/png", "image/jpeg"},
		AllowedExtensions: []string{".png", "jpg"},
		TakeoffMaxSize:    64,
		TakeoffExtensions: []string{".pdf", ".dwg"},
	})
	svc.now = func() time.Time { return time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC) }
	return svc, dir
}

func TestUploadServiceSavesImage(t *testing.T) {
	svc, dir := newTestUploadService(t)
	meta, err := svc.SaveFile(buildFileHeader(t, "Preview.PNG", pngBytes(t)), constants.UploadSceneImage)
	if err != nil {
		t.Fatalf("save image failed: %v", err)
	}
	if !strings.HasPrefix(meta.URL, "/uploads/image/2026/03/") || !strings.HasSuffix(meta.Filename, ".png") {
		t.Fatalf("unexpected meta: %+v", meta)
	}
	if meta.OriginalName != "Preview.PNG" {
		t.Fatalf("original name not kept: %+v", meta)
	}
	if _, err := os.Stat(filepath.Join(dir, "image", "2026", "03", meta.Filename)); err != nil {
		t.Fatalf("file not written: %v", err)
	}
}

func TestUploadServiceRejectsFakeImage(t *testing.T) {
	svc, _ := newTestUploadService(t)
	_, err := svc.SaveFile(buildFileHeader(t, "fake.png", []byte("plain text pretending")), "")
	if !errors.Is(err, ErrUploadTypeInvalid) {
		t.Fatalf("expected type invalid, got %v", err)
	}
}

func TestUploadServiceTakeoffRules(t *testing.T) {
	svc, _ := newTestUploadService(t)

	meta, err := svc.SaveFile(buildFileHeader(t, "plan.pdf", []byte("%PDF-1.4 small")), constants.UploadSceneTakeoff)
	if err != nil {
		t.Fatalf("save takeoff failed: %v", err)
	}
	if !strings.HasPrefix(meta.URL, "/uploads/takeoff/") || meta.Size != int64(len("%PDF-1.4 small")) {
		t.Fatalf("unexpected meta: %+v", meta)
	}

	if _, err := svc.SaveFile(buildFileHeader(t, "script.exe", []byte("MZ")), constants.UploadSceneTakeoff); !errors.Is(err, ErrUploadTypeInvalid) {
		t.Fatalf("expected extension rejection, got %v", err)
	}
	if _, err := svc.SaveFile(buildFileHeader(t, "big.pdf", bytes.Repeat([]byte("x"), 128)), constants.UploadSceneTakeoff); !errors.Is(err, ErrUploadTooLarge) {
		t.Fatalf("expected too large, got %v", err)
	}
}

func TestUploadServiceRejectsTypeOutsideWhitelist(t *testing.T) {
	svc, _ := newTestUploadService(t)
	img := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode gif failed: %v", err)
	}
	// 扩展名伪装成 png，但内容是 gif
	if _, err := svc.SaveFile(buildFileHeader(t, "icon.png", buf.Bytes()), constants.UploadSceneImage); !errors.Is(err, ErrUploadTypeInvalid) {
		t.Fatalf("expected gif rejection, got %v", err)
	}
}

func TestMatchExtension(t *testing.T) {
	cases := []struct {
		ext     string
		allowed []string
		want    bool
	}{
		{".jpg", []string{"jpg"}, true},
		{".png", []string{" .PNG "}, true},
		{".pdf", []string{".dwg", ""}, false},
		{"", []string{".pdf"}, false},
	}
	for _, tc := range cases {
		if got := matchExtension(tc.ext, tc.allowed); got != tc.want {
			t.Fatalf("matchExtension(%q, %v) = %v, want %v", tc.ext, tc.allowed, got, tc.want)
		}
	}
}
