package storage

import "errors"

// ErrNotFound is returned by Retrieve when the key has never been stored.
var ErrNotFound = errors.New("storage: key not found")

// Interface defines the contract for storage operations
type Interface interface {
	Store(key string, data []byte) error
	Retrieve(key string) ([]byte, error)
	List(prefix string) ([]string, error)
	Delete(key string) error
}
