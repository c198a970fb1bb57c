/*
Copyright The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package oss

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	alioss "github.com/aliyun/aliyun-oss-go-sdk/oss"
	"golang.org/x/sync/errgroup"

	"github.com/pfeifferj/pai-go-sdk/pkg/auth"
	"github.com/pfeifferj/pai-go-sdk/pkg/logging"
)

// DefaultConcurrency bounds parallel transfers of a directory tree.
const DefaultConcurrency = 4

const listPageSize = 1000

// Bucket is the subset of *alioss.Bucket the transfer code uses.
type Bucket interface {
	PutObjectFromFile(objectKey, filePath string, options ...alioss.Option) error
	GetObjectToFile(objectKey, filePath string, options ...alioss.Option) error
	IsObjectExist(objectKey string, options ...alioss.Option) (bool, error)
	ListObjectsV2(options ...alioss.Option) (alioss.ListObjectsResultV2, error)
	DeleteObject(objectKey string, options ...alioss.Option) error
}

// Client moves files between the local disk and one bucket.
type Client struct {
	bucket      Bucket
	name        string
	endpoint    string
	concurrency int
	logger      *logging.Logger
}

// Option configures a Client
type Option func(*Client)

// WithConcurrency sets how many objects a directory transfer moves at once.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// NewClient opens bucketName on endpoint with the given credentials.
func NewClient(endpoint, bucketName string, creds *auth.Credentials, opts ...Option) (*Client, error) {
	if endpoint == "" || bucketName == "" {
		return nil, fmt.Errorf("OSS endpoint and bucket name are required")
	}
	if creds == nil {
		return nil, auth.ErrNoCredentials
	}
	var clientOpts []alioss.ClientOption
	if creds.SecurityToken != "" {
		clientOpts = append(clientOpts, alioss.SecurityToken(creds.SecurityToken))
	}
	cli, err := alioss.New(endpoint, creds.AccessKeyID, creds.AccessKeySecret, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating OSS client: %w", err)
	}
	bucket, err := cli.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("opening bucket %s: %w", bucketName, err)
	}
	return NewClientWithBucket(bucket, bucketName, endpoint, opts...), nil
}

// NewClientWithBucket wraps an already opened bucket.
func NewClientWithBucket(bucket Bucket, bucketName, endpoint string, opts ...Option) *Client {
	c := &Client{
		bucket:      bucket,
		name:        bucketName,
		endpoint:    endpoint,
		concurrency: DefaultConcurrency,
		logger:      logging.OSSLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URI returns the URI of object in this client's bucket.
func (c *Client) URI(object string) URI {
	return URI{Bucket: c.name, Endpoint: c.endpoint, Object: strings.TrimPrefix(object, "/")}
}

func (c *Client) checkBucket(u URI) error {
	if u.Bucket != c.name {
		return fmt.Errorf("%w: %s is not in bucket %s", ErrInvalidOSSURI, u, c.name)
	}
	return nil
}

// Upload copies a local file or directory tree to dest. A file uploaded to a
// directory URI keeps its base name; a directory keeps its relative layout.
// It returns the URI of the uploaded file or directory.
func (c *Client) Upload(ctx context.Context, localPath string, dest URI) (URI, error) {
	if err := c.checkBucket(dest); err != nil {
		return URI{}, err
	}
	info, err := os.Stat(localPath)
	if err != nil {
		return URI{}, fmt.Errorf("uploading %s: %w", localPath, err)
	}

	if !info.IsDir() {
		target := dest
		if dest.IsDir() {
			target = dest.Join(filepath.Base(localPath))
		}
		if err := c.put(ctx, localPath, target.Object); err != nil {
			return URI{}, err
		}
		return target, nil
	}

	root := dest
	if !root.IsDir() {
		root.Object += "/"
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	walkErr := filepath.WalkDir(localPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(localPath, p)
		if err != nil {
			return err
		}
		key := root.Join(filepath.ToSlash(rel)).Object
		g.Go(func() error { return c.put(ctx, p, key) })
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return URI{}, err
	}
	if walkErr != nil {
		return URI{}, fmt.Errorf("walking %s: %w", localPath, walkErr)
	}
	return root, nil
}

func (c *Client) put(ctx context.Context, localPath, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.bucket.PutObjectFromFile(key, localPath); err != nil {
		return fmt.Errorf("uploading %s to %s: %w", localPath, c.URI(key), err)
	}
	c.logger.Debug("uploaded object", "bucket", c.name, "key", key)
	return nil
}

// List returns the keys under the prefix of src.
func (c *Client) List(ctx context.Context, src URI) ([]string, error) {
	if err := c.checkBucket(src); err != nil {
		return nil, err
	}
	var keys []string
	token := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		opts := []alioss.Option{alioss.Prefix(src.Object), alioss.MaxKeys(listPageSize)}
		if token != "" {
			opts = append(opts, alioss.ContinuationToken(token))
		}
		result, err := c.bucket.ListObjectsV2(opts...)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", src, err)
		}
		for _, obj := range result.Objects {
			keys = append(keys, obj.Key)
		}
		if !result.IsTruncated {
			return keys, nil
		}
		token = result.NextContinuationToken
	}
}

// Download copies src to localDir. A directory URI downloads every object under
// the prefix, keeping paths relative to it. It returns the local files written.
func (c *Client) Download(ctx context.Context, src URI, localDir string) ([]string, error) {
	if err := c.checkBucket(src); err != nil {
		return nil, err
	}
	if !src.IsDir() {
		target := filepath.Join(localDir, src.Base())
		if err := c.get(ctx, src.Object, target); err != nil {
			return nil, err
		}
		return []string{target}, nil
	}

	keys, err := c.List(ctx, src)
	if err != nil {
		return nil, err
	}
	var files []string
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, key := range keys {
		rel := strings.TrimPrefix(key, src.Object)
		if rel == "" || strings.HasSuffix(rel, "/") {
			continue
		}
		target := filepath.Join(localDir, filepath.FromSlash(path.Clean(rel)))
		files = append(files, target)
		g.Go(func() error { return c.get(ctx, key, target) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func (c *Client) get(ctx context.Context, key, target string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if err := c.bucket.GetObjectToFile(key, target); err != nil {
		return fmt.Errorf("downloading %s: %w", c.URI(key), err)
	}
	c.logger.Debug("downloaded object", "bucket", c.name, "key", key)
	return nil
}

// Exists reports whether the object exists. For a directory URI it reports
// whether any object has the prefix.
func (c *Client) Exists(ctx context.Context, u URI) (bool, error) {
	if err := c.checkBucket(u); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !u.IsDir() {
		ok, err := c.bucket.IsObjectExist(u.Object)
		if err != nil {
			return false, fmt.Errorf("checking %s: %w", u, err)
		}
		return ok, nil
	}
	result, err := c.bucket.ListObjectsV2(alioss.Prefix(u.Object), alioss.MaxKeys(1))
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", u, err)
	}
	return len(result.Objects) > 0, nil
}

// Delete removes one object.
func (c *Client) Delete(ctx context.Context, u URI) error {
	if err := c.checkBucket(u); err != nil {
		return err
	}
	if u.IsDir() {
		return errors.New("refusing to delete a directory prefix")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.bucket.DeleteObject(u.Object); err != nil {
		return fmt.Errorf("deleting %s: %w", u, err)
	}
	return nil
}
