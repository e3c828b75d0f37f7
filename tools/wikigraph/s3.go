package main

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/multilgraphwiki/go-wikigraph"
	"github.com/multilgraphwiki/go-wikigraph/internal/envutil"
)

func isS3(name string) bool {
	return strings.HasPrefix(name, "s3://")
}

// parseS3 splits s3://bucket/key.
func parseS3(name string) (bucket, key string, err error) {
	u, err := url.Parse(name)
	if err != nil {
		return "", "", errors.Wrapf(err, "parsing %v", name)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", errors.Errorf("%v is not s3://bucket/key", name)
	}
	return u.Host, key, nil
}

// openS3 streams a dump out of a bucket, decompressing it on the fly.
// AWS_REGION and AWS_ENDPOINT are honored, the latter for S3
// compatible stores.
func openS3(ctx context.Context, name string) (io.ReadCloser, error) {
	bucket, key, err := parseS3(name)
	if err != nil {
		return nil, err
	}

	var opts []func(*config.LoadOptions) error
	if region := envutil.String("AWS_REGION", ""); region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	endpoint := envutil.String("AWS_ENDPOINT", "")
	if endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(endpoint))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "loading aws config")
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = endpoint != ""
	})

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "getting %v", name)
	}
	return wikigraph.Decompress(key, out.Body)
}
