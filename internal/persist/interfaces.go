package persist

import "context"

// Store persists opaque state blobs under a key. Load returns
// repository.ErrNotFound when nothing was written for the key yet.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}
