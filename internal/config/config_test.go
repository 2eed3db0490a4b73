package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpiry(t *testing.T) {
	cases := map[string]time.Duration{
		"7d":   7 * 24 * time.Hour,
		" 1d ": 24 * time.Hour,
		"3600": time.Hour,
		"90m":  90 * time.Minute,
		"12h":  12 * time.Hour,
	}
	for in, want := range cases {
		got, err := ParseExpiry(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "0d", "-1d", "xd", "0", "-5m", "soon"} {
		_, err := ParseExpiry(in)
		assert.Error(t, err, in)
	}
}

func TestBucketDefaults(t *testing.T) {
	m := Minio{Buckets: map[string]BucketConfig{
		BucketLogos:  {Name: "course-logos", PresignTTL: time.Hour},
		BucketProofs: {Name: "receipts"},
	}}

	assert.Equal(t, BucketConfig{Name: "course-logos", PresignTTL: time.Hour}, m.Bucket(BucketLogos))
	assert.Equal(t, BucketConfig{Name: "receipts", PresignTTL: 15 * time.Minute}, m.Bucket(BucketProofs))
	assert.Equal(t, BucketConfig{Name: "iicpas-other", PresignTTL: 15 * time.Minute}, m.Bucket("other"))
}
