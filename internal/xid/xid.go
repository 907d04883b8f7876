// Package xid generates prefixed identifiers for transactions, catalog
// entries and inventory batches.
package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// New returns an id of the form "<prefix>-<unixnano>-<hex>". The
// timestamp keeps ids roughly sortable by creation time; the random
// suffix breaks ties. If the random source fails the id degrades to
// prefix and timestamp only.
func New(prefix string) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixNano(), hex.EncodeToString(buf))
}
