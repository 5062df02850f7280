package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/JaimeStill/filer/pkg/lifecycle"
)

type azure struct {
	client       *azblob.Client
	container    string
	source       string
	destination  string
	maxList      int32
	pollInterval time.Duration
	logger       *slog.Logger
}

// newAzure creates the Azure client from a connection string when one is
// configured, falling back to DefaultAzureCredential against AccountURL.
// No connection is established until the first request.
func newAzure(cfg *Config, logger *slog.Logger) (*azure, error) {
	client, err := newAzureClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	interval := cfg.CopyPollIntervalDuration()
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	return &azure{
		client:       client,
		container:    cfg.ContainerName,
		source:       cfg.Source,
		destination:  cfg.Destination,
		maxList:      cfg.MaxListSize,
		pollInterval: interval,
		logger:       logger.With("system", "storage", "backend", BackendAzure),
	}, nil
}

func newAzureClient(cfg *Config) (*azblob.Client, error) {
	if cfg.ConnectionString != "" {
		return azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("default credential: %w", err)
	}
	return azblob.NewClient(cfg.AccountURL, cred, nil)
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting storage system")

	lc.OnStartup(func() error {
		_, err := a.client.CreateContainer(lc.Context(), a.container, nil)
		if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			// listing reports the same failure per run; startup stays non-fatal
			a.logger.Error("storage container initialization failed", "error", err)
			return nil
		}

		a.logger.Info("storage container ready", "container", a.container)
		return nil
	})

	return nil
}

func (a *azure) List(ctx context.Context) ([]string, error) {
	a.logger.Info("listing root-level items", "container", a.container, "source", a.source)

	opts := &azblob.ListBlobsFlatOptions{
		MaxResults: to.Ptr(a.maxList),
	}
	if a.source != "" {
		opts.Prefix = to.Ptr(a.source + "/")
	}

	pager := a.client.NewListBlobsFlatPager(a.container, opts)

	items := make([]string, 0)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list blobs: %w", err)
		}

		for _, b := range page.Segment.BlobItems {
			if b.Name == nil {
				continue
			}
			if item, ok := rootLevel(a.source, *b.Name); ok {
				items = append(items, item)
			}
		}
	}

	a.logger.Info("found uncategorized items", "count", len(items))
	return items, nil
}

func (a *azure) Move(ctx context.Context, item, category string) (string, error) {
	srcKey, dstKey, err := moveKeys(a.source, a.destination, item, category)
	if err != nil {
		return "", err
	}

	container := a.client.ServiceClient().NewContainerClient(a.container)
	src := container.NewBlobClient(srcKey)
	dst := container.NewBlobClient(dstKey)

	a.logger.Debug("copying blob", "source", srcKey, "destination", dstKey)

	resp, err := dst.StartCopyFromURL(ctx, src.URL(), nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.CannotVerifyCopySource) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, srcKey)
		}
		return "", fmt.Errorf("copy blob %s: %w", srcKey, err)
	}

	if err := a.awaitCopy(ctx, dst, resp.CopyStatus); err != nil {
		return "", fmt.Errorf("copy blob %s: %w", srcKey, err)
	}

	a.logger.Debug("deleting source blob", "source", srcKey)

	if _, err := src.Delete(ctx, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, srcKey)
		}
		return "", fmt.Errorf("delete blob %s: %w", srcKey, err)
	}

	a.logger.Info("moved item", "item", item, "destination", dstKey)
	return dstKey, nil
}

// awaitCopy polls the destination until a pending server-side copy settles.
// Copies inside one account usually complete synchronously.
func (a *azure) awaitCopy(ctx context.Context, dst *blob.Client, status *blob.CopyStatusType) error {
	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for status != nil && *status == blob.CopyStatusTypePending {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		props, err := dst.GetProperties(ctx, nil)
		if err != nil {
			return fmt.Errorf("copy status: %w", err)
		}
		status = props.CopyStatus
	}

	if status != nil && *status != blob.CopyStatusTypeSuccess {
		return fmt.Errorf("%w: status %s", ErrCopyFailed, *status)
	}
	return nil
}
