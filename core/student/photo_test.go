package student

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodePhoto(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    string
		wantErr bool
	}{
		{name: "png", content: []byte("\x89PNG\r\n\x1a\n"), want: "data:image/png;base64,iVBORw0KGgo="},
		{name: "text drops the charset", content: []byte("hi"), want: "data:text/plain;base64,aGk="},
		{name: "too large", content: bytes.Repeat([]byte{0}, MaxPhotoSize+1), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodePhoto(context.Background(), bytes.NewReader(tt.content))
			if (err != nil) != tt.wantErr {
				t.Errorf("EncodePhoto() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodePhoto_canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := EncodePhoto(ctx, strings.NewReader("hi"))
	assert.Equal(t, context.Canceled, err)
}
