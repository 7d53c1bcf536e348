package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/garunski/iiif-manifest-storage/pkg/manifeststore/database"
)

const badgerKeyPrefix = "manifests/"

// BadgerBackend stores manifests in a badger database under the
// "manifests/" key prefix.
type BadgerBackend struct {
	db *database.DB
}

func NewBadgerBackend(db *database.DB) *BadgerBackend {
	return &BadgerBackend{db: db}
}

func (b *BadgerBackend) Name() string {
	return BackendBadger
}

func (b *BadgerBackend) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	keys, err := b.db.Keys(badgerKeyPrefix)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, strings.TrimPrefix(key, badgerKeyPrefix))
	}
	return ids, nil
}

func (b *BadgerBackend) Read(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := b.db.Get(badgerKeyPrefix + id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (b *BadgerBackend) Write(ctx context.Context, id string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Set(badgerKeyPrefix+id, data)
}

func (b *BadgerBackend) Exists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return b.db.Has(badgerKeyPrefix + id)
}
