package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatPNG, false},
		{"png", FormatPNG, false},
		{"PNG", FormatPNG, false},
		{" pdf ", FormatPDF, false},
		{"PDF", FormatPDF, false},
		{"jpeg", "", true},
		{"tiff", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSuggestFilename(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	got := SuggestFilename("My Page: Test!", "example.com", ts, FormatPNG)
	if got != "my_page_test_20260314T092653.png" {
		t.Errorf("got %q", got)
	}

	// Empty title falls back to the host.
	got = SuggestFilename("", "example.com", ts, FormatPDF)
	if got != "example_com_20260314T092653.pdf" {
		t.Errorf("got %q", got)
	}

	// Nothing usable falls back to a constant stem.
	got = SuggestFilename("", "", ts, FormatPNG)
	if got != "capture_20260314T092653.png" {
		t.Errorf("got %q", got)
	}

	// Long titles are capped.
	got = SuggestFilename(strings.Repeat("a", 200), "example.com", ts, FormatPNG)
	if len(got) > 80+len("_20260314T092653.png") {
		t.Errorf("filename too long: %d chars", len(got))
	}
	if !strings.HasSuffix(got, ".png") {
		t.Errorf("got %q, want .png suffix", got)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Hello World", "hello_world"},
		{"already-safe-123", "already-safe-123"},
		{"___leading", "leading"},
		{"trailing!!!", "trailing"},
		{"a  b\tc", "a_b_c"},
		{"Ünïcödé", "n_c_d"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitize(tt.in); got != tt.want {
			t.Errorf("sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func encodedPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "out.png")
	data := encodedPNG(t)

	if err := Write(path, FormatPNG, data); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("written file is not a decodable png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 4 {
		t.Errorf("decoded dims = %dx%d, want 4x4", b.Dx(), b.Dy())
	}
}

func TestWritePDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")

	if err := Write(path, FormatPDF, encodedPNG(t)); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(raw, []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header")
	}

	// The temp image used for the import must not linger.
	if _, err := os.Stat(path + ".tmp.png"); !os.IsNotExist(err) {
		t.Errorf("temp png left behind: %v", err)
	}
}

func TestWriteUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bmp")
	if err := Write(path, Format("bmp"), encodedPNG(t)); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
