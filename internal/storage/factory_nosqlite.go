//go:build !sqlite

package storage

import "errors"

func newSQLiteStore(string) (Store, error) {
	return nil, errors.New("sqlite store requires building with -tags sqlite")
}
