package objstore

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/remiges-tech/logharbour/logharbour"
)

// Publisher uploads the files of an export directory under one run prefix.
type Publisher struct {
	store  ObjectStore
	bucket string
	prefix string
	logger *logharbour.Logger
}

// NewPublisher returns a Publisher that uploads into bucket under prefix.
func NewPublisher(store ObjectStore, bucket, prefix string, logger *logharbour.Logger) *Publisher {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Publisher{store: store, bucket: bucket, prefix: prefix, logger: logger.WithModule("objstore")}
}

// ObjectKey is the key a file of a run is published under:
// <prefix>/<runID>/<file>, without a leading slash when prefix is empty.
func ObjectKey(prefix, runID, file string) string {
	return strings.TrimPrefix(path.Join(prefix, runID, file), "/")
}

// Publish uploads every named file from dir and returns their keys. If an
// upload fails, the objects already uploaded for this run are deleted.
func (p *Publisher) Publish(ctx context.Context, runID, dir string, files []string) ([]string, error) {
	keys := make([]string, 0, len(files))
	for _, name := range files {
		key := ObjectKey(p.prefix, runID, name)
		if err := p.put(ctx, key, filepath.Join(dir, name)); err != nil {
			p.logger.Error(err).LogActivity("Publish failed", map[string]any{"bucket": p.bucket, "key": key})
			p.rollback(ctx, keys)
			return nil, fmt.Errorf("publish %s: %w", name, err)
		}
		keys = append(keys, key)
	}
	p.logger.Info().LogActivity("Export published", map[string]any{
		"bucket": p.bucket,
		"run_id": runID,
		"files":  len(keys),
	})
	return keys, nil
}

func (p *Publisher) put(ctx context.Context, key, filePath string) error {
	contentType, err := detectContentType(filePath)
	if err != nil {
		return err
	}
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	return p.store.Put(ctx, p.bucket, key, f, info.Size(), contentType)
}

func (p *Publisher) rollback(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := p.store.Delete(ctx, p.bucket, key); err != nil {
			p.logger.Warn().LogActivity("Could not remove published object", map[string]any{
				"bucket": p.bucket,
				"key":    key,
				"error":  err.Error(),
			})
		}
	}
}

// detectContentType sniffs the file and falls back to its extension when
// the content only looks like generic text or bytes.
func detectContentType(filePath string) (string, error) {
	mtype, err := mimetype.DetectFile(filePath)
	if err != nil {
		return "", err
	}
	if mtype.Is("application/octet-stream") || mtype.Is("text/plain") {
		switch strings.ToLower(filepath.Ext(filePath)) {
		case ".csv":
			return "text/csv", nil
		case ".json":
			return "application/json", nil
		case ".sql":
			return "application/sql", nil
		}
	}
	return mtype.String(), nil
}
