package host

import (
	"context"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/themeassets/pkg/assets"
)

// DefaultS3Timeout bounds every S3 request S3Files makes.
const DefaultS3Timeout = 10 * time.Second

// S3API is the subset of *s3.Client used by S3Files.
type S3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Files reads files from an S3 bucket. A local path under Root maps to the
// object key Prefix + the path relative to Root, so manifests can be read
// from object storage while paths keep their on-disk shape.
//
//	files := host.NewS3Files(client, "site-assets", "themes/", "/srv/themes")
//	files.ReadFile("/srv/themes/parent/public/mix-manifest.json")
//	// s3://site-assets/themes/parent/public/mix-manifest.json
type S3Files struct {
	client  S3API
	bucket  string
	prefix  string
	root    string
	timeout time.Duration
}

var _ assets.Files = (*S3Files)(nil)

// NewS3Files creates an S3-backed Files.
func NewS3Files(client S3API, bucket, prefix, root string) *S3Files {
	return &S3Files{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		root:    strings.TrimRight(root, "/"),
		timeout: DefaultS3Timeout,
	}
}

// WithTimeout sets the per-request timeout.
func (f *S3Files) WithTimeout(d time.Duration) *S3Files {
	f.timeout = d
	return f
}

// Key returns the object key for name, or false when name is outside Root.
func (f *S3Files) Key(name string) (string, bool) {
	name = path.Clean(name)
	rel := name
	if f.root != "" {
		var ok bool
		rel, ok = strings.CutPrefix(name, f.root+"/")
		if !ok {
			return "", false
		}
	}
	return f.prefix + strings.TrimLeft(rel, "/"), true
}

func (f *S3Files) Exists(name string) bool {
	key, ok := f.Key(name)
	if !ok {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	_, err := f.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	return err == nil
}

func (f *S3Files) ReadFile(name string) ([]byte, error) {
	key, ok := f.Key(name)
	if !ok {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrNotExist}
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// S3Options configures NewS3Client.
type S3Options struct {
	Region    string
	Endpoint  string
	PathStyle bool
}

// NewS3Client creates an S3 client. Credentials come from AWS_ACCESS_KEY_ID,
// AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN; without them requests are
// anonymous, which suits public buckets.
func NewS3Client(opts S3Options) *s3.Client {
	o := s3.Options{
		Region:       opts.Region,
		UsePathStyle: opts.PathStyle,
		Credentials:  envCredentials(),
	}
	if opts.Endpoint != "" {
		o.BaseEndpoint = aws.String(opts.Endpoint)
	}
	return s3.New(o)
}

func envCredentials() aws.CredentialsProvider {
	id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.AnonymousCredentials{}
	}
	creds := aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}
	return aws.NewCredentialsCache(aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return creds, nil
	}))
}
