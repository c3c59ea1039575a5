package project

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

type header struct {
	magic     uint32
	version   int32
	stateSize int32
	imageSize int32
}

// Open reads and decodes the project file at path
func Open(path string) (*Project, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open project file: %w", err)
	}
	defer file.Close()

	return Decode(file, filepath.Base(path))
}

// DecodeBytes decodes a project held in memory
func DecodeBytes(data []byte, fileName string) (*Project, error) {
	return Decode(bytes.NewReader(data), fileName)
}

// Decode reads a complete project from r, starting at r's current offset.
// fileName is recorded on the returned Project as is.
//
// The header is validated before anything else is read. A failed decode
// never returns a partially populated Project.
func Decode(r io.ReadSeeker, fileName string) (*Project, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("failed to locate project start: %w", err)
	}

	hdr, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	// Always seek past the header so fields added to it later are skipped.
	if _, err := r.Seek(start+HeaderSize, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to project state: %w", err)
	}

	state, err := readRegion(r, "state", int64(hdr.stateSize))
	if err != nil {
		return nil, err
	}
	if _, _, err := transform.Bytes(encoding.UTF8Validator, state); err != nil {
		return nil, &FormatError{Reason: "project state is not valid UTF-8"}
	}

	params, unit, err := ParseState(state)
	if err != nil {
		return nil, err
	}

	image, err := readRegion(r, "image", int64(hdr.imageSize))
	if err != nil {
		return nil, err
	}

	return &Project{
		Version:               hdr.version,
		CameraParameters:      params,
		ReferenceDistanceUnit: unit,
		ImageBytes:            image,
		FileName:              fileName,
	}, nil
}

func readHeader(r io.Reader) (header, error) {
	var buf [HeaderSize]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil && !isEOF(err) {
		return header{}, fmt.Errorf("failed to read project header: %w", err)
	}
	// A wrong magic is reported before a short header.
	if n >= 4 && binary.LittleEndian.Uint32(buf[0:4]) != Magic {
		return header{}, &FormatError{Reason: "not an fSpy project"}
	}
	if n < HeaderSize {
		return header{}, &TruncatedInputError{Region: "header", Want: HeaderSize, Got: int64(n)}
	}

	hdr := header{
		magic:     binary.LittleEndian.Uint32(buf[0:4]),
		version:   int32(binary.LittleEndian.Uint32(buf[4:8])),
		stateSize: int32(binary.LittleEndian.Uint32(buf[8:12])),
		imageSize: int32(binary.LittleEndian.Uint32(buf[12:16])),
	}

	if hdr.version != SupportedVersion {
		return header{}, &UnsupportedVersionError{Version: hdr.version}
	}
	if hdr.imageSize <= 0 {
		return header{}, &FormatError{Reason: "no image data"}
	}
	if hdr.stateSize < 0 {
		return header{}, formatErrorf("negative state size %d", hdr.stateSize)
	}
	return hdr, nil
}

// readRegion reads exactly size bytes. The buffer grows with the data
// actually present, so a header that overstates a size fails with a
// TruncatedInputError instead of a large up-front allocation.
func readRegion(r io.Reader, region string, size int64) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, size))
	if err != nil {
		return nil, fmt.Errorf("failed to read project %s: %w", region, err)
	}
	if n < size {
		return nil, &TruncatedInputError{Region: region, Want: size, Got: n}
	}
	return buf.Bytes(), nil
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
