package handler

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/cuongbtq/email-verifier-be/internal/api/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCursor_Encoding(t *testing.T) {
	at := time.Date(2025, 3, 4, 5, 6, 7, 890, time.UTC)
	encoded := EncodeListCursor(&storage.ListCursor{CreatedAt: at, JobID: "job|with|pipes"})

	got, err := DecodeListCursor(encoded)
	require.NoError(t, err)
	assert.True(t, at.Equal(got.CreatedAt))
	assert.Equal(t, "job|with|pipes", got.JobID)
}

func TestDecodeListCursor_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
	}{
		{"not base64", "%%%"},
		{"missing separator", base64.URLEncoding.EncodeToString([]byte("12345"))},
		{"bad timestamp", base64.URLEncoding.EncodeToString([]byte("abc|job-1"))},
		{"empty job id", base64.URLEncoding.EncodeToString([]byte("12345|"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeListCursor(tt.cursor)
			assert.Error(t, err)
		})
	}
}

func TestDecodeListCursor_Empty(t *testing.T) {
	got, err := DecodeListCursor("")
	require.NoError(t, err)
	assert.Nil(t, got)
}
