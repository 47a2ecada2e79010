package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
	last int64
)

func init() {
	// Seed a PRNG from crypto/rand so ULID entropy is unpredictable.
	// ulid.Monotonic keeps IDs generated within the same millisecond
	// lexicographically increasing.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a ULID string (time-sortable identifier).
//
// Exports are stamped with one so a snapshot file can be told apart from
// another taken in the same second.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), mono)
	if err != nil {
		// Errors are extremely unlikely unless time goes backwards or entropy fails.
		panic(err)
	}
	return id.String()
}

// Next returns a record id: the creation time in unix milliseconds, bumped
// past the previously issued value so ids stay unique and increasing even
// when two records are created in the same millisecond.
func Next() int64 {
	return NextAt(time.Now())
}

// NextAt is Next with an explicit clock.
func NextAt(now time.Time) int64 {
	mu.Lock()
	defer mu.Unlock()

	n := now.UnixMilli()
	if n <= last {
		n = last + 1
	}
	last = n
	return n
}

// Observe records an id issued elsewhere (for example one loaded from disk)
// so later calls to Next never collide with it.
func Observe(v int64) {
	mu.Lock()
	defer mu.Unlock()
	if v > last {
		last = v
	}
}
