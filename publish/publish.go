// Package publish uploads a generated chatbot project to an S3-compatible bucket.
package publish

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sweetpotato0/chatbot-factory/config"
	fterrors "github.com/sweetpotato0/chatbot-factory/errors"
)

// Publisher uploads the files of one run and returns the object prefix they were stored under.
type Publisher interface {
	Publish(ctx context.Context, runID, root string, files []string) (string, error)
}

// bucketAPI is the subset of *minio.Client used here
type bucketAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// S3Publisher stores artifacts with minio-go
type S3Publisher struct {
	client   bucketAPI
	bucket   string
	region   string
	initOnce sync.Once
	initErr  error
}

// NewS3Publisher validates cfg and creates the client. The bucket is created on first use.
func NewS3Publisher(cfg config.ArtifactSettings) (*S3Publisher, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required: %w", fterrors.ErrInvalidInput)
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required: %w", fterrors.ErrInvalidInput)
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required: %w", fterrors.ErrInvalidInput)
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return newS3Publisher(client, bucket, region), nil
}

func newS3Publisher(client bucketAPI, bucket, region string) *S3Publisher {
	return &S3Publisher{client: client, bucket: bucket, region: region}
}

func (p *S3Publisher) ensureBucket(ctx context.Context) error {
	p.initOnce.Do(func() {
		exists, err := p.client.BucketExists(ctx, p.bucket)
		if err != nil {
			p.initErr = err
			return
		}
		if exists {
			return
		}
		p.initErr = p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{Region: p.region})
	})
	return p.initErr
}

// Publish uploads every file under root to "<base(root)>/<runID>/<relative path>".
// Files outside root are rejected.
func (p *S3Publisher) Publish(ctx context.Context, runID, root string, files []string) (string, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return "", fmt.Errorf("run_id is required: %w", fterrors.ErrInvalidInput)
	}
	if root == "" {
		return "", fmt.Errorf("publish: %w", fterrors.ErrOutputPathMissing)
	}
	if err := p.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}

	prefix := Prefix(runID, root)
	for _, file := range files {
		key, err := objectKey(prefix, root, file)
		if err != nil {
			return prefix, err
		}
		if err := p.putFile(ctx, key, file); err != nil {
			return prefix, fmt.Errorf("upload %s: %w", key, err)
		}
	}
	return prefix, nil
}

func (p *S3Publisher) putFile(ctx context.Context, key, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	contentType := mime.TypeByExtension(filepath.Ext(file))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = p.client.PutObject(ctx, p.bucket, key, f, info.Size(), minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// Prefix returns the object prefix used for a run's artifacts
func Prefix(runID, root string) string {
	return path.Join(filepath.Base(filepath.Clean(root)), strings.TrimSpace(runID)) + "/"
}

func objectKey(prefix, root, file string) (string, error) {
	rel, err := filepath.Rel(root, file)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("file %s is outside %s: %w", file, root, fterrors.ErrInvalidInput)
	}
	return prefix + filepath.ToSlash(rel), nil
}
