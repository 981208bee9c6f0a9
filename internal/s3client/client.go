package s3client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	appConfig "treecopy/config"
	"treecopy/internal/models"
	"treecopy/internal/remote"
)

const (
	delimiter = "/"
	// maxNameAttempts bounds the " (n)" suffixes tried for a new container.
	maxNameAttempts = 1000
)

var (
	errInvalidName = errors.New("name must not be empty or contain " + delimiter)
	errNotChild    = errors.New("item is not below the parent to remove")
	errNotFound    = errors.New("no object or folder with this key")
	errKeyExists   = errors.New("an object with this key already exists")
	errNameTaken   = errors.New("no free folder name")
)

// Client maps the remote.Storage capability onto one S3 bucket. Containers
// are key prefixes ending in "/" and the empty id is the bucket root; leaf
// ids are object keys.
type Client struct {
	s3Client *s3.Client
	config   *appConfig.Config
}

func New(cfg *appConfig.Config) (*Client, error) {
	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     cfg.AccessKey,
				SecretAccessKey: cfg.SecretKey,
			},
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Client *s3.Client
	if cfg.ApiURL != "" {
		s3Client = s3.NewFromConfig(awsConfig, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.ApiURL)
			o.UsePathStyle = true
		})
	} else {
		s3Client = s3.NewFromConfig(awsConfig)
	}

	return &Client{
		s3Client: s3Client,
		config:   cfg,
	}, nil
}

func (c *Client) ListChildren(ctx context.Context, containerID string) ([]models.RemoteItem, error) {
	prefix := containerPrefix(containerID)

	paginator := s3.NewListObjectsV2Paginator(c.s3Client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(c.config.BucketName),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String(delimiter),
	})

	var items []models.RemoteItem
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, remote.NewOperationError(remote.OpList, containerID, describe(err))
		}

		for _, p := range page.CommonPrefixes {
			key := aws.ToString(p.Prefix)
			items = append(items, models.RemoteItem{ID: key, Name: baseName(key), Kind: models.KindContainer})
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix {
				// folder marker of the container itself
				continue
			}
			items = append(items, models.RemoteItem{ID: key, Name: baseName(key), Kind: models.KindLeaf})
		}
	}
	return items, nil
}

// CreateContainer writes an empty folder marker object so the new prefix
// exists even before anything is copied into it. When the prefix is already
// in use the name gets a " (2)", " (3)", ... suffix, so every call yields a
// new, empty container.
func (c *Client) CreateContainer(ctx context.Context, name, parentID string) (string, error) {
	if name == "" || strings.Contains(name, delimiter) {
		return "", remote.NewOperationError(remote.OpCreate, parentID, fmt.Errorf("%q: %w", name, errInvalidName))
	}

	parent := containerPrefix(parentID)
	for n := 1; n <= maxNameAttempts; n++ {
		candidate := name
		if n > 1 {
			candidate = fmt.Sprintf("%s (%d)", name, n)
		}
		key := parent + candidate + delimiter

		exists, err := c.prefixExists(ctx, key)
		if err != nil {
			return "", remote.NewOperationError(remote.OpCreate, parentID, err)
		}
		if exists {
			continue
		}

		_, err = c.s3Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(c.config.BucketName),
			Key:    aws.String(key),
			Body:   bytes.NewReader(nil),
		})
		if err != nil {
			return "", remote.NewOperationError(remote.OpCreate, parentID, describe(err))
		}
		return key, nil
	}
	return "", remote.NewOperationError(remote.OpCreate, parentID, fmt.Errorf("%q: %w", name, errNameTaken))
}

func (c *Client) GetName(ctx context.Context, itemID string) (string, error) {
	prefix := containerPrefix(itemID)
	if prefix == "" {
		return c.config.BucketName, nil
	}

	if isContainerID(itemID) {
		exists, err := c.prefixExists(ctx, prefix)
		if err != nil {
			return "", remote.NewOperationError(remote.OpGetName, itemID, err)
		}
		if !exists {
			return "", remote.NewOperationError(remote.OpGetName, itemID, errNotFound)
		}
		return baseName(itemID), nil
	}

	_, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.config.BucketName),
		Key:    aws.String(itemID),
	})
	if err != nil {
		return "", remote.NewOperationError(remote.OpGetName, itemID, describe(err))
	}
	return baseName(itemID), nil
}

func (c *Client) CopyItem(ctx context.Context, itemID, destinationParentID, newName string) (string, error) {
	if newName == "" || strings.Contains(newName, delimiter) {
		return "", remote.NewOperationError(remote.OpCopy, itemID, fmt.Errorf("%q: %w", newName, errInvalidName))
	}

	key := containerPrefix(destinationParentID) + newName
	if err := c.copyObject(ctx, itemID, key); err != nil {
		return "", remote.NewOperationError(remote.OpCopy, itemID, err)
	}
	return key, nil
}

// ReparentItem moves an object by server-side copy followed by a delete of
// the original key. S3 has no native move, so the item id changes. An
// existing object at the target key is never overwritten.
func (c *Client) ReparentItem(ctx context.Context, itemID, addParentID, removeParentID string) error {
	oldPrefix := containerPrefix(removeParentID)
	if !strings.HasPrefix(itemID, oldPrefix) {
		return remote.NewOperationError(remote.OpReparent, itemID, errNotChild)
	}

	key := containerPrefix(addParentID) + strings.TrimPrefix(itemID, oldPrefix)
	if err := c.copyObject(ctx, itemID, key); err != nil {
		return remote.NewOperationError(remote.OpReparent, itemID, err)
	}

	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.config.BucketName),
		Key:    aws.String(itemID),
	})
	if err != nil {
		return remote.NewOperationError(remote.OpReparent, itemID, fmt.Errorf("copied to %s but failed to delete original: %w", key, describe(err)))
	}
	return nil
}

// copyObject fails with errKeyExists instead of replacing an object that is
// already stored at destinationKey.
func (c *Client) copyObject(ctx context.Context, sourceKey, destinationKey string) error {
	exists, err := c.keyExists(ctx, destinationKey)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%s: %w", destinationKey, errKeyExists)
	}

	_, err = c.s3Client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(c.config.BucketName),
		CopySource: aws.String(url.PathEscape(c.config.BucketName + delimiter + sourceKey)),
		Key:        aws.String(destinationKey),
	})
	return describe(err)
}

func (c *Client) prefixExists(ctx context.Context, prefix string) (bool, error) {
	out, err := c.s3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.config.BucketName),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, describe(err)
	}
	return len(out.Contents) > 0, nil
}

func (c *Client) keyExists(ctx context.Context, key string) (bool, error) {
	_, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.config.BucketName),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}

	var notFound *types.NotFound
	var respErr *awshttp.ResponseError
	if errors.As(err, &notFound) || (errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound) {
		return false, nil
	}
	return false, describe(err)
}

// describe reduces SDK errors to the service error code and message.
func describe(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return err
}

func containerPrefix(id string) string {
	id = strings.TrimPrefix(id, delimiter)
	if id == "" {
		return ""
	}
	if !strings.HasSuffix(id, delimiter) {
		id += delimiter
	}
	return id
}

func isContainerID(id string) bool {
	return strings.HasSuffix(id, delimiter)
}

func baseName(key string) string {
	return path.Base(strings.TrimSuffix(key, delimiter))
}
