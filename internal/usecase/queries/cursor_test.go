//go:build unit

package queries_test

import (
	"encoding/base64"
	"testing"
	"time"

	"harborline/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	ts := time.Date(2026, 9, 1, 10, 30, 45, 123456000, time.UTC)
	id := uuid.New()

	encoded := queries.EncodeAfterCursor(ts, id)
	gotTime, gotID, err := queries.DecodeAfterCursor(encoded)
	require.NoError(t, err)

	assert.True(t, ts.Equal(gotTime), "microsecond precision must survive the round trip")
	assert.Equal(t, id, gotID)
}

func TestDecodeAfterCursor(t *testing.T) {
	testCases := []struct {
		name   string
		cursor string
	}{
		{"empty cursor", ""},
		{"not base64", "!!!not-base64!!!"},
		{"wrong version", base64.URLEncoding.EncodeToString([]byte("v0:123-" + uuid.NewString()))},
		{"missing separator", base64.URLEncoding.EncodeToString([]byte("v1:123456"))},
		{"garbage timestamp", base64.URLEncoding.EncodeToString([]byte("v1:abc-" + uuid.NewString()))},
		{"garbage uuid", base64.URLEncoding.EncodeToString([]byte("v1:123456-not-a-uuid"))},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := queries.DecodeAfterCursor(tc.cursor)
			assert.Error(t, err)
		})
	}
}

func TestValidateLimit(t *testing.T) {
	assert.Equal(t, 20, queries.ValidateLimit(0))
	assert.Equal(t, 20, queries.ValidateLimit(-5))
	assert.Equal(t, 1, queries.ValidateLimit(1))
	assert.Equal(t, queries.MaxListLimit, queries.ValidateLimit(queries.MaxListLimit))
	assert.Equal(t, queries.MaxListLimit, queries.ValidateLimit(queries.MaxListLimit+1))
}
