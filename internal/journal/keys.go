package journal

import (
	"encoding/binary"
	"time"
)

// recordPrefix namespaces fetch records inside the database
const recordPrefix = "fetch:"

// RecordKey builds a key that sorts by fetch time, then by seq.
// The timestamp and sequence are big-endian so byte order equals time order.
func RecordKey(at time.Time, seq uint64) []byte {
	key := make([]byte, 0, len(recordPrefix)+16)
	key = append(key, recordPrefix...)
	key = binary.BigEndian.AppendUint64(key, uint64(at.UnixNano()))
	key = binary.BigEndian.AppendUint64(key, seq)
	return key
}

// seekLast is the smallest key greater than every record key
func seekLast() []byte {
	return append([]byte(recordPrefix), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
}
