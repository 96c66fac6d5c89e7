package network

import (
	"context"
	"fmt"
	"github.com/minio/minio-go"
	"github.com/openaccess/exchange/constants"
	"github.com/openaccess/exchange/util/fileutil"
	"os"
	"path/filepath"
)

// ObjectGetter is the part of the minio client the fetcher uses.
type ObjectGetter interface {
	FGetObjectWithContext(ctx context.Context, bucketName, objectName, filePath string, opts minio.GetObjectOptions) error
}

// PDFFetcher turns the PDF source of a deposit request into a
// local file. Local paths are used as they are. Sources like
// s3://bucket/key are downloaded into the staging directory.
type PDFFetcher struct {
	client     ObjectGetter
	stagingDir string
}

// NewPDFFetcher returns a fetcher that downloads S3 objects with
// client into stagingDir. Client may be nil if no S3 endpoint is
// configured, in which case only local paths work.
func NewPDFFetcher(client ObjectGetter, stagingDir string) *PDFFetcher {
	if stagingDir == "" {
		stagingDir = os.TempDir()
	}
	return &PDFFetcher{client: client, stagingDir: stagingDir}
}

// NewMinioClient returns a client for the S3-compatible service
// at endpoint.
func NewMinioClient(endpoint, accessKeyId, secretAccessKey string, useSSL bool) (*minio.Client, error) {
	return minio.New(endpoint, accessKeyId, secretAccessKey, useSSL)
}

// Fetch returns the local path of the PDF at source, and a function
// that removes anything Fetch downloaded. Always call cleanup, even
// when the path was local.
func (fetcher *PDFFetcher) Fetch(ctx context.Context, requestId, source string) (localPath string, cleanup func(), err error) {
	cleanup = func() {}
	matches := constants.S3UriPattern.FindStringSubmatch(source)
	if matches == nil {
		if !fileutil.FileExists(source) {
			return "", cleanup, fmt.Errorf("PDF %s does not exist", source)
		}
		return source, cleanup, nil
	}
	if fetcher.client == nil {
		return "", cleanup, fmt.Errorf("Cannot fetch %s because no S3 endpoint is configured", source)
	}
	bucket, key := matches[1], matches[2]
	localPath = filepath.Join(fetcher.stagingDir, fmt.Sprintf("%s_%s", requestId, filepath.Base(key)))
	err = fetcher.client.FGetObjectWithContext(ctx, bucket, key, localPath, minio.GetObjectOptions{})
	if err != nil {
		os.Remove(localPath)
		return "", cleanup, fmt.Errorf("Cannot fetch %s: %v", source, err)
	}
	cleanup = func() {
		if fileutil.LooksSafeToDelete(localPath, 5, 2) {
			os.Remove(localPath)
		}
	}
	return localPath, cleanup, nil
}
