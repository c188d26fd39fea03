package storage

import (
	"testing"

	"github.com/andresuchdata/qota-finance/backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		useSSL   bool
		host     string
		secure   bool
	}{
		{"s3.example.com", true, "s3.example.com", true},
		{"localhost:9000", false, "localhost:9000", false},
		{"//minio.local:9000/", false, "minio.local:9000", false},
		{"http://minio.local:9000", true, "minio.local:9000", false},
		{"https://s3.example.com", false, "s3.example.com", true},
	}
	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			host, secure, err := splitEndpoint(tt.endpoint, tt.useSSL)
			require.NoError(t, err)
			assert.Equal(t, tt.host, host)
			assert.Equal(t, tt.secure, secure)
		})
	}

	_, _, err := splitEndpoint("https://", true)
	assert.Error(t, err)
}

func TestNewS3ClientValidatesConfig(t *testing.T) {
	valid := config.StorageConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "reports",
	}

	client, err := NewS3Client(valid)
	require.NoError(t, err)
	assert.Equal(t, "reports", client.bucket)

	missingEndpoint := valid
	missingEndpoint.Endpoint = ""
	_, err = NewS3Client(missingEndpoint)
	assert.ErrorContains(t, err, "endpoint")

	missingCreds := valid
	missingCreds.SecretKey = ""
	_, err = NewS3Client(missingCreds)
	assert.ErrorContains(t, err, "credentials")

	missingBucket := valid
	missingBucket.Bucket = ""
	_, err = NewS3Client(missingBucket)
	assert.ErrorContains(t, err, "bucket")
}
