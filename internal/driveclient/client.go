// Package driveclient implements remote.Storage on the Google Drive v3 API,
// including shared drives, using a service account that impersonates a
// delegated user.
package driveclient

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	appConfig "treecopy/config"
	"treecopy/internal/models"
	"treecopy/internal/remote"
)

const FolderMimeType = "application/vnd.google-apps.folder"

type Client struct {
	service *drive.Service
}

func New(ctx context.Context, cfg *appConfig.Config) (*Client, error) {
	jsonKey, err := os.ReadFile(cfg.ServiceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account file: %w", err)
	}

	conf, err := google.JWTConfigFromJSON(jsonKey, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account key: %w", err)
	}
	conf.Subject = cfg.DelegatedUserEmail

	service, err := drive.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return NewWithService(service), nil
}

func NewWithService(service *drive.Service) *Client {
	return &Client{service: service}
}

// ListChildren pages through every non-trashed child of containerID.
func (c *Client) ListChildren(ctx context.Context, containerID string) ([]models.RemoteItem, error) {
	query := fmt.Sprintf("'%s' in parents and trashed = false", escapeQuery(containerID))

	var items []models.RemoteItem
	err := c.service.Files.List().
		Q(query).
		Spaces("drive").
		Fields("nextPageToken, files(id, name, mimeType)").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				items = append(items, toRemoteItem(f))
			}
			return nil
		})
	if err != nil {
		return nil, remote.NewOperationError(remote.OpList, containerID, describe(err))
	}
	return items, nil
}

func (c *Client) CreateContainer(ctx context.Context, name, parentID string) (string, error) {
	folder := &drive.File{
		Name:     name,
		MimeType: FolderMimeType,
		Parents:  []string{parentID},
	}
	created, err := c.service.Files.Create(folder).
		SupportsAllDrives(true).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", remote.NewOperationError(remote.OpCreate, parentID, describe(err))
	}
	return created.Id, nil
}

func (c *Client) GetName(ctx context.Context, itemID string) (string, error) {
	f, err := c.service.Files.Get(itemID).
		SupportsAllDrives(true).
		Fields("name").
		Context(ctx).
		Do()
	if err != nil {
		return "", remote.NewOperationError(remote.OpGetName, itemID, describe(err))
	}
	return f.Name, nil
}

func (c *Client) CopyItem(ctx context.Context, itemID, destinationParentID, newName string) (string, error) {
	copied, err := c.service.Files.Copy(itemID, &drive.File{
		Name:    newName,
		Parents: []string{destinationParentID},
	}).
		SupportsAllDrives(true).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", remote.NewOperationError(remote.OpCopy, itemID, describe(err))
	}
	return copied.Id, nil
}

// ReparentItem adds the new parent and removes the old one in a single
// update request.
func (c *Client) ReparentItem(ctx context.Context, itemID, addParentID, removeParentID string) error {
	_, err := c.service.Files.Update(itemID, &drive.File{}).
		AddParents(addParentID).
		RemoveParents(removeParentID).
		SupportsAllDrives(true).
		Fields("id, parents").
		Context(ctx).
		Do()
	if err != nil {
		return remote.NewOperationError(remote.OpReparent, itemID, describe(err))
	}
	return nil
}

func toRemoteItem(f *drive.File) models.RemoteItem {
	kind := models.KindLeaf
	if f.MimeType == FolderMimeType {
		kind = models.KindContainer
	}
	return models.RemoteItem{ID: f.Id, Name: f.Name, Kind: kind}
}

func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

func describe(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return fmt.Errorf("googleapi %d: %s", apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("googleapi %d", apiErr.Code)
	}
	return err
}
