package utils

import (
	"bytes"
	"encoding/base64"
	"errors"
	"mime/multipart"
	"net/textproto"
	"testing"
	"time"
)

func TestDecodeBase64Image(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G'}
	encoded := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr error
	}{
		{name: "raw", input: encoded, want: raw},
		{name: "data url", input: "data:image/png;base64," + encoded, want: raw},
		{name: "padded whitespace", input: "  " + encoded + "\n", want: raw},
		{name: "empty", input: "", wantErr: ErrNoFile},
		{name: "empty data url", input: "data:image/png;base64,", wantErr: ErrNoFile},
	}

	u := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := u.DecodeBase64Image(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeBase64Image() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeBase64Image() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("DecodeBase64Image() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := u.DecodeBase64Image("not base64!"); err == nil {
		t.Error("DecodeBase64Image() accepted invalid input")
	}
}

func TestValidateImageFile(t *testing.T) {
	header := func(contentType string, size int64) *multipart.FileHeader {
		h := textproto.MIMEHeader{}
		if contentType != "" {
			h.Set("Content-Type", contentType)
		}
		return &multipart.FileHeader{Filename: "f", Header: h, Size: size}
	}

	u := New()
	tests := []struct {
		name string
		file *multipart.FileHeader
		want error
	}{
		{name: "jpeg", file: header("image/jpeg", 1024)},
		{name: "octet stream", file: header("application/octet-stream", 1024)},
		{name: "no content type", file: header("", 1024)},
		{name: "pdf", file: header("application/pdf", 1024), want: ErrNotAnImage},
		{name: "too large", file: header("image/png", 11*1024*1024), want: ErrFileTooLarge},
		{name: "missing", file: nil, want: ErrNoFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := u.ValidateImageFile(tt.file); !errors.Is(err, tt.want) {
				t.Errorf("ValidateImageFile() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewULIDFromTimestamp(t *testing.T) {
	id, err := New().NewULIDFromTimestamp(time.Now())
	if err != nil {
		t.Fatalf("NewULIDFromTimestamp() error = %v", err)
	}
	if len(id) != 26 {
		t.Errorf("ULID %q has length %d", id, len(id))
	}
}
