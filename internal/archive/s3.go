package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"camorg/internal/config"
	"camorg/internal/organizer"
)

// versionMetadataKey is the user metadata entry holding the snapshot version.
// S3 returns metadata keys lower-cased.
const versionMetadataKey = "camorg-version"

const defaultS3Timeout = 5 * time.Minute

// s3API is the subset of *s3.Client used by S3Archive.
type s3API interface {
	manager.UploadAPIClient
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Archive stores journal snapshots as objects under
// <prefix>/snapshots/<hostID>.<name>, with the version kept in object
// metadata so a single HEAD answers the consistency check.
type S3Archive struct {
	name     string
	bucket   string
	prefix   string
	client   s3API
	uploader *manager.Uploader
	timeout  time.Duration
}

// NewS3Archive creates an S3 archive from its config. Credentials come from
// the config when both keys are set and from the default AWS chain otherwise.
// A custom endpoint switches to path-style addressing for S3-compatible
// stores.
func NewS3Archive(ctx context.Context, cfg config.ArchiveConfig) (*S3Archive, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 archive requires s3_bucket to be set")
	}

	region := cfg.S3Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Archive(cfg.Name, cfg.S3Bucket, cfg.S3Prefix, client), nil
}

func newS3Archive(name, bucket, prefix string, client s3API) *S3Archive {
	return &S3Archive{
		name:     name,
		bucket:   bucket,
		prefix:   prefix,
		client:   client,
		uploader: manager.NewUploader(client),
		timeout:  defaultS3Timeout,
	}
}

func (a *S3Archive) key(hostID, name string) string {
	return path.Join(a.prefix, "snapshots", hostID+"."+name)
}

func (a *S3Archive) newContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.timeout)
}

// PutSnapshot uploads a snapshot for a host, tagging it with version.
func (a *S3Archive) PutSnapshot(hostID, name string, r io.Reader, size int64, version int64) error {
	ctx, cancel := a.newContext()
	defer cancel()

	counter := &countingReader{r: r}
	_, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(hostID, name)),
		Body:   counter,
		Metadata: map[string]string{
			versionMetadataKey: strconv.FormatInt(version, 10),
		},
	})
	if err != nil {
		return fmt.Errorf("uploading snapshot to s3://%s/%s: %w", a.bucket, a.key(hostID, name), err)
	}
	if counter.n != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, counter.n)
	}
	return nil
}

// GetSnapshotVersion returns the snapshot version for a host, or 0 if the
// object does not exist.
func (a *S3Archive) GetSnapshotVersion(hostID, name string) (int64, error) {
	ctx, cancel := a.newContext()
	defer cancel()

	out, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(hostID, name)),
	})
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading snapshot metadata: %w", err)
	}

	raw, ok := out.Metadata[versionMetadataKey]
	if !ok {
		return 0, nil
	}
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version: %w", err)
	}
	return version, nil
}

// GetSnapshot downloads the snapshot for a host into w.
func (a *S3Archive) GetSnapshot(hostID, name string, w io.Writer) error {
	ctx, cancel := a.newContext()
	defer cancel()

	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(hostID, name)),
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("snapshot %q not found for host: %s", name, hostID)
		}
		return fmt.Errorf("downloading snapshot: %w", err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	return nil
}

// ValidateSetup checks that the bucket exists and is reachable.
func (a *S3Archive) ValidateSetup() error {
	ctx, cancel := a.newContext()
	defer cancel()

	if _, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)}); err != nil {
		return fmt.Errorf("s3 bucket %s not accessible: %w", a.bucket, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &notFound) || errors.As(err, &noSuchKey)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Compile-time check that S3Archive implements organizer.Archive interface
var _ organizer.Archive = (*S3Archive)(nil)
