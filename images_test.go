package docx2md

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nicholasgasior/docx2md/internal/ooxml"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "image1", want: "image1"},
		{in: "My Photo", want: "My_Photo"},
		{in: "café", want: "caf_"},
		{in: "..hidden", want: "hidden"},
		{in: "", want: "image"},
		{in: "...", want: "image"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeName(tt.in))
		})
	}
}

func TestUniqueName(t *testing.T) {
	taken := map[string]bool{}
	assert.Equal(t, "image1.png", uniqueName(taken, "image1", ".png"))
	assert.Equal(t, "image1-2.png", uniqueName(taken, "image1", ".png"))
	assert.Equal(t, "Image1-3.png", uniqueName(taken, "Image1", ".png"))
	assert.Equal(t, "image1.jpg", uniqueName(taken, "image1", ".jpg"))
}

func TestImageType(t *testing.T) {
	gif := []byte("GIF89a\x01\x00\x01\x00")
	tests := []struct {
		name     string
		part     string
		data     []byte
		wantExt  string
		wantMIME string
	}{
		{name: "known extension", part: "word/media/a.jpeg", data: []byte("x"), wantExt: ".jpeg", wantMIME: "image/jpeg"},
		{name: "upper case extension", part: "word/media/a.GIF", data: gif, wantExt: ".gif", wantMIME: "image/gif"},
		{name: "sniffed", part: "word/media/a.dat", data: gif, wantExt: ".gif", wantMIME: "image/gif"},
		{name: "unknown", part: "word/media/a.dat", data: []byte("plain words"), wantExt: ".bin", wantMIME: "text/plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, mimeType := imageType(&ooxml.ContentTypes{}, tt.part, tt.data)
			assert.Equal(t, tt.wantExt, ext)
			assert.Equal(t, tt.wantMIME, mimeType)
		})
	}
}
