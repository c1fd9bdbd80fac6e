// Package archive turns request payloads into documents for the transformer:
// it detects single documents and zip bundles, strips gzip or zstd transport
// compression, and unwraps bundle members in order.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// DefaultMaxSize caps decompressed payloads and individual bundle members.
const DefaultMaxSize = 256 * 1024 * 1024

// ErrUnsupportedMediaType is returned for content types that are neither a
// document nor a bundle.
var ErrUnsupportedMediaType = errors.New("unsupported media type")

// ErrTooLarge is returned when decompressed data exceeds the size limit.
var ErrTooLarge = errors.New("payload exceeds size limit")

// ErrInvalidArchive is returned for corrupt zip, gzip or zstd payloads.
var ErrInvalidArchive = errors.New("invalid archive")

// Kind classifies a payload.
type Kind int

const (
	KindDocument Kind = iota
	KindArchive
)

func (k Kind) String() string {
	if k == KindArchive {
		return "archive"
	}
	return "document"
}

// Member is one file of a bundle.
type Member struct {
	Name string
	Data []byte
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	zipMagic  = []byte{'P', 'K', 0x03, 0x04}
)

// KindOf maps a Content-Type header to a payload kind. Parameters such as
// charset are ignored.
func KindOf(contentType string) (Kind, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedMediaType, contentType)
	}
	switch strings.ToLower(mediaType) {
	case "text/xml", "application/xml":
		return KindDocument, nil
	case "application/zip", "application/x-zip-compressed":
		return KindArchive, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
	}
}

// Sniff guesses the kind from the leading bytes, for callers without a
// content type (files on disk, inbox objects).
func Sniff(data []byte) Kind {
	if bytes.HasPrefix(data, zipMagic) {
		return KindArchive
	}
	return KindDocument
}

// Decompress strips one layer of gzip or zstd compression, detected by magic
// bytes. Other data is returned unchanged.
func Decompress(data []byte, maxSize int64) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %v", ErrInvalidArchive, err)
		}
		defer r.Close()
		return readLimited(r, maxSize)

	case bytes.HasPrefix(data, zstdMagic):
		r, err := zstd.NewReader(bytes.NewReader(data), zstd.WithDecoderMaxMemory(uint64(maxSize)))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrInvalidArchive, err)
		}
		defer r.Close()
		return readLimited(r, maxSize)

	default:
		return data, nil
	}
}

// Unwrap returns the regular files of a zip bundle in archive order.
func Unwrap(data []byte, maxSize int64) ([]Member, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: zip: %v", ErrInvalidArchive, err)
	}

	members := make([]Member, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}
		if f.UncompressedSize64 > uint64(maxSize) {
			return nil, fmt.Errorf("member %s: %w", f.Name, ErrTooLarge)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", f.Name, err)
		}
		body, err := readLimited(rc, maxSize)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", f.Name, err)
		}
		members = append(members, Member{Name: f.Name, Data: body})
	}
	return members, nil
}

func readLimited(r io.Reader, maxSize int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, ErrTooLarge
	}
	return data, nil
}
