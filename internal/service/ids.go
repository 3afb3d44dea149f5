package service

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	IDSchemeUUID      = "uuid"
	IDSchemeTimestamp = "timestamp"
)

type IDGenerator func() string

func NewIDGenerator(scheme string) (IDGenerator, error) {
	switch scheme {
	case "", IDSchemeUUID:
		return UUIDGenerator, nil
	case IDSchemeTimestamp:
		return NewTimestampGenerator(time.Now), nil
	default:
		return nil, fmt.Errorf("unknown id scheme %q", scheme)
	}
}

// UUIDGenerator returns version 7 UUIDs, which sort by creation time.
func UUIDGenerator() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewTimestampGenerator yields Unix milliseconds as decimal strings. Within one
// generator the values are strictly increasing even if the clock stalls or
// steps back.
func NewTimestampGenerator(now func() time.Time) IDGenerator {
	var (
		mu   sync.Mutex
		last int64
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()

		ms := now().UnixMilli()
		if ms <= last {
			ms = last + 1
		}
		last = ms
		return strconv.FormatInt(ms, 10)
	}
}
