// Package state provides the small pieces of durable client-side state the
// help engine keeps between runs: the sticky role selection and the session
// identifier. Access is capability-shaped — callers hold a Store and treat
// every read and write as fallible, degrading to in-memory defaults when the
// backing medium is unavailable.
package state

import (
	"errors"
	"io"
)

// Well-known keys, carried over from the dashboard's original storage layout.
const (
	KeyRole    = "trendvision_usertype"
	KeySession = "trendvision_session"
)

// ErrNotFound is returned by Get when no value has been stored for the key.
var ErrNotFound = errors.New("state: key not found")

// ErrWatchUnsupported is returned by Watch on stores without change
// notification.
var ErrWatchUnsupported = errors.New("state: watch not supported")

// Store is a fallible string key-value capability.
type Store interface {
	// Get returns the stored value, or ErrNotFound.
	Get(key string) (string, error)
	// Set stores the value, replacing any previous one.
	Set(key, value string) error
	// Watch invokes fn with the new value whenever key is changed by
	// another writer. The returned closer stops the watch.
	Watch(key string, fn func(value string)) (io.Closer, error)
}
