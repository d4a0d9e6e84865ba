package rag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     string
		wantErr  bool
	}{
		{filename: "report.pdf", want: "application/pdf"},
		{filename: "notes.txt", want: "text/plain"},
		{filename: "readme.md", want: "text/markdown"},
		{filename: "UPPER.TXT", want: "text/plain"},
		{filename: "slides.docx", wantErr: true},
		{filename: "archive.zip", wantErr: true},
		{filename: "noextension", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			ct, err := DetectFormat(tt.filename)
			if tt.wantErr {
				require.Error(t, err)
				assert.IsType(t, &UnsupportedFormatError{}, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ct)
		})
	}
}

func TestExtractTextPlain(t *testing.T) {
	text, err := ExtractText("notes.txt", []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestExtractTextMarkdown(t *testing.T) {
	text, err := ExtractText("readme.md", []byte("# Title\n\nbody"))
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nbody", text)
}

func TestExtractTextEmpty(t *testing.T) {
	_, err := ExtractText("blank.txt", []byte("   \n\t  \n"))
	require.Error(t, err)

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.True(t, errors.Is(err, ErrNoText))
}

func TestExtractTextCorruptPDF(t *testing.T) {
	_, err := ExtractText("broken.pdf", []byte("not a pdf at all"))
	require.Error(t, err)

	var extractionErr *ExtractionError
	assert.ErrorAs(t, err, &extractionErr)
}
