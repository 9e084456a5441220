package persistence

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/talgya/hex-cities/internal/territory"
)

// Envelope format versions.
const (
	VersionJSON uint32 = 1 // Payload is UTF-8 JSON
	VersionLZ4  uint32 = 2 // Payload is an lz4 frame holding the JSON
)

const headerSize = 8

var (
	// ErrUnknownVersion is returned for envelopes of an unsupported version.
	ErrUnknownVersion = errors.New("unknown snapshot format version")
	// ErrTruncated is returned when the header or payload is cut short.
	ErrTruncated = errors.New("truncated snapshot envelope")
)

// MarshalSnapshot encodes a snapshot as JSON.
func MarshalSnapshot(s territory.Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// UnmarshalSnapshot decodes a JSON snapshot.
func UnmarshalSnapshot(data []byte) (territory.Snapshot, error) {
	var s territory.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return territory.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return s, nil
}

// WriteEnvelope writes s framed as a 4-byte version, a 4-byte payload
// length and the payload. Both header fields are little-endian.
func WriteEnvelope(w io.Writer, s territory.Snapshot, version uint32) error {
	payload, err := MarshalSnapshot(s)
	if err != nil {
		return err
	}

	switch version {
	case VersionJSON:
	case VersionLZ4:
		if payload, err = compress(payload); err != nil {
			return err
		}
	default:
		return fmt.Errorf("write envelope version %d: %w", version, ErrUnknownVersion)
	}

	var header [headerSize]byte
	binary.LittleEndian.PutUint32(header[0:4], version)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(payload)))

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write envelope header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write envelope payload: %w", err)
	}
	return nil
}

// ReadEnvelope reads one envelope written by WriteEnvelope and returns the
// snapshot and the version it was stored with.
func ReadEnvelope(r io.Reader) (territory.Snapshot, uint32, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return territory.Snapshot{}, 0, fmt.Errorf("read envelope header: %w", truncated(err))
	}

	version := binary.LittleEndian.Uint32(header[0:4])
	length := binary.LittleEndian.Uint32(header[4:8])
	if version != VersionJSON && version != VersionLZ4 {
		return territory.Snapshot{}, version, fmt.Errorf("read envelope version %d: %w", version, ErrUnknownVersion)
	}

	payload, err := io.ReadAll(io.LimitReader(r, int64(length)))
	if err != nil {
		return territory.Snapshot{}, version, fmt.Errorf("read envelope payload: %w", err)
	}
	if uint32(len(payload)) < length {
		return territory.Snapshot{}, version, fmt.Errorf("read envelope payload: got %d of %d bytes: %w", len(payload), length, ErrTruncated)
	}

	if version == VersionLZ4 {
		if payload, err = decompress(payload); err != nil {
			return territory.Snapshot{}, version, err
		}
	}

	s, err := UnmarshalSnapshot(payload)
	return s, version, err
}

// SaveManager writes the manager state as an envelope of the given version.
func SaveManager(w io.Writer, m *territory.Manager, version uint32) error {
	return WriteEnvelope(w, m.Snapshot(), version)
}

// LoadManager reads an envelope and restores the manager it holds.
func LoadManager(r io.Reader) (*territory.Manager, error) {
	s, _, err := ReadEnvelope(r)
	if err != nil {
		return nil, err
	}
	return territory.Restore(s)
}

func compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(src); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	return buf.Bytes(), nil
}

func decompress(src []byte) ([]byte, error) {
	zr := lz4.NewReader(bytes.NewReader(src))
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	return out, nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}
