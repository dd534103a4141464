package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yatube/yatube/config"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDiskStorageSaveAndDelete(t *testing.T) {
	root := t.TempDir()
	st := NewDiskStorage(root, "/media/")
	ctx := context.Background()

	if err := st.Save(ctx, "posts/a.txt", strings.NewReader("hello"), "text/plain"); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(filepath.Join(root, "posts", "a.txt"))
	if err != nil || string(got) != "hello" {
		t.Fatalf("file = %q, %v", got, err)
	}
	if u := st.URL("posts/a.txt"); u != "/media/posts/a.txt" {
		t.Errorf("URL = %q", u)
	}
	if err := st.Delete(ctx, "posts/a.txt"); err != nil {
		t.Fatal(err)
	}
	if err := st.Delete(ctx, "posts/a.txt"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestDiskStorageRejectsEscapingNames(t *testing.T) {
	st := NewDiskStorage(t.TempDir(), "/media/")
	for _, name := range []string{"", "/etc/passwd", "../x", "posts/../../x", "."} {
		err := st.Save(context.Background(), name, strings.NewReader("x"), "")
		if !errors.Is(err, ErrInvalidName) {
			t.Errorf("Save(%q) err = %v, want ErrInvalidName", name, err)
		}
	}
}

func TestPrepareImage(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		maxWidth     uint
		wantW, wantH int
	}{
		{"shrinks wide image", 2000, 100, 1000, 1000, 50},
		{"keeps small image", 300, 200, 1000, 300, 200},
		{"zero max keeps size", 300, 200, 0, 300, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := PrepareImage(bytes.NewReader(pngBytes(t, tt.w, tt.h)), tt.maxWidth)
			if err != nil {
				t.Fatal(err)
			}
			if img.Width != tt.wantW || img.Height != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", img.Width, img.Height, tt.wantW, tt.wantH)
			}
			if img.Ext != ".png" || img.ContentType != "image/png" {
				t.Errorf("format = %s %s", img.Ext, img.ContentType)
			}
		})
	}
}

func TestPrepareImageRejectsGarbage(t *testing.T) {
	_, err := PrepareImage(strings.NewReader("not an image"), 100)
	if !errors.Is(err, ErrNotImage) {
		t.Errorf("err = %v, want ErrNotImage", err)
	}
}

func TestSavePostImage(t *testing.T) {
	root := t.TempDir()
	st := NewDiskStorage(root, "/media/")
	name, err := SavePostImage(context.Background(), st, bytes.NewReader(pngBytes(t, 10, 10)), 960)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(name, "posts/") || !strings.HasSuffix(name, ".png") {
		t.Errorf("name = %q", name)
	}
	if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(name))); err != nil {
		t.Errorf("stored file missing: %v", err)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	c := config.Default()
	c.MediaRoot = t.TempDir()
	st, err := New(c)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := st.(*DiskStorage); !ok {
		t.Errorf("default backend = %T", st)
	}

	c.StorageBackend = "s3"
	c.S3Bucket = ""
	if _, err := New(c); err == nil {
		t.Error("s3 without bucket accepted")
	}

	c.StorageBackend = "ftp"
	if _, err := New(c); err == nil {
		t.Error("unknown backend accepted")
	}
}

func TestS3URL(t *testing.T) {
	tests := []struct {
		opts S3Options
		want string
	}{
		{S3Options{Bucket: "b", Region: "eu-west-1"}, "https://b.s3.eu-west-1.amazonaws.com/posts/x.jpg"},
		{S3Options{Bucket: "b", Endpoint: "http://minio:9000/"}, "http://minio:9000/b/posts/x.jpg"},
		{S3Options{Bucket: "b", BaseURL: "https://cdn.example.com"}, "https://cdn.example.com/posts/x.jpg"},
	}
	for _, tt := range tests {
		s := &S3Storage{opts: tt.opts}
		if got := s.URL("posts/x.jpg"); got != tt.want {
			t.Errorf("URL(%+v) = %q, want %q", tt.opts, got, tt.want)
		}
	}
}
