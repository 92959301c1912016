package index

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/binderdb/binder/pkg/types"
)

// Log record layout, little-endian int32 fields:
//
//	[catLen][category bytes][keyLen][key bytes][segmentIndex][documentIndex]
//
// There is no framing or checksum beyond the length fields; a record cut off
// by a crash is recognized by hitting EOF mid-record.

var ErrIndexClosed = errors.New("index is closed")

// maxTextLen bounds category and key lengths so a corrupted length field
// cannot trigger a giant allocation during replay.
const maxTextLen = 1 << 20

func encodeRecord(category, key string, ptr types.Pointer) []byte {
	buf := make([]byte, 0, 16+len(category)+len(key))
	var num [4]byte

	binary.LittleEndian.PutUint32(num[:], uint32(len(category)))
	buf = append(buf, num[:]...)
	buf = append(buf, category...)

	binary.LittleEndian.PutUint32(num[:], uint32(len(key)))
	buf = append(buf, num[:]...)
	buf = append(buf, key...)

	binary.LittleEndian.PutUint32(num[:], uint32(ptr.Segment))
	buf = append(buf, num[:]...)

	binary.LittleEndian.PutUint32(num[:], uint32(ptr.Document))
	buf = append(buf, num[:]...)

	return buf
}

// replayRecords decodes records until EOF, calling apply for each. It returns
// the record count, the byte offset just past the last complete record, and
// whether the log ended in a truncated record.
func replayRecords(r io.Reader, apply func(category, key string, ptr types.Pointer)) (int, int64, bool, error) {
	br := bufio.NewReader(r)
	n := 0
	var validEnd int64
	for {
		category, key, ptr, err := readRecord(br)
		if err == io.EOF {
			return n, validEnd, false, nil
		}
		if err == io.ErrUnexpectedEOF {
			return n, validEnd, true, nil
		}
		if err != nil {
			return n, validEnd, false, err
		}
		apply(category, key, ptr)
		validEnd += int64(16 + len(category) + len(key))
		n++
	}
}

// readRecord decodes one record. io.EOF means a clean end between records;
// io.ErrUnexpectedEOF means the log ends inside a record.
func readRecord(br *bufio.Reader) (string, string, types.Pointer, error) {
	category, err := readText(br, true)
	if err != nil {
		return "", "", types.Pointer{}, err
	}
	key, err := readText(br, false)
	if err != nil {
		return "", "", types.Pointer{}, err
	}

	seg, err := readInt32(br)
	if err != nil {
		return "", "", types.Pointer{}, eofToUnexpected(err)
	}
	doc, err := readInt32(br)
	if err != nil {
		return "", "", types.Pointer{}, eofToUnexpected(err)
	}

	ptr, err := types.NewPointer(int(seg), int(doc))
	if err != nil {
		return "", "", types.Pointer{}, fmt.Errorf("record for (%s, %s): %w", category, key, err)
	}
	return category, key, ptr, nil
}

// readText reads a length-prefixed string. first marks the first field of a
// record, where a clean EOF is a normal end of log rather than truncation.
func readText(br *bufio.Reader, first bool) (string, error) {
	length, err := readInt32(br)
	if err != nil {
		if first && err == io.EOF {
			return "", io.EOF
		}
		return "", eofToUnexpected(err)
	}
	if length < 0 || length > maxTextLen {
		return "", fmt.Errorf("text length %d out of range", length)
	}

	p := make([]byte, length)
	if _, err := io.ReadFull(br, p); err != nil {
		return "", eofToUnexpected(err)
	}
	return string(p), nil
}

func readInt32(br *bufio.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(br, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

func eofToUnexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
