package archive

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, files ...Member) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.Name)
		require.NoError(t, err)
		if f.Data != nil {
			_, err = w.Write(f.Data)
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		contentType string
		want        Kind
		wantErr     bool
	}{
		{"text/xml", KindDocument, false},
		{"application/xml; charset=utf-8", KindDocument, false},
		{"application/zip", KindArchive, false},
		{"application/x-zip-compressed", KindArchive, false},
		{"application/json", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			got, err := KindOf(tt.contentType)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedMediaType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSniff(t *testing.T) {
	assert.Equal(t, KindArchive, Sniff(buildZip(t, Member{Name: "a.xml", Data: []byte("<a/>")})))
	assert.Equal(t, KindDocument, Sniff([]byte("<a/>")))
}

func TestUnwrapKeepsOrderAndSkipsDirectories(t *testing.T) {
	data := buildZip(t,
		Member{Name: "b.xml", Data: []byte("<b/>")},
		Member{Name: "dir/"},
		Member{Name: "dir/a.xml", Data: []byte("<a/>")},
	)

	members, err := Unwrap(data, DefaultMaxSize)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "b.xml", members[0].Name)
	assert.Equal(t, "dir/a.xml", members[1].Name)
	assert.Equal(t, "<a/>", string(members[1].Data))
}

func TestUnwrapErrors(t *testing.T) {
	_, err := Unwrap([]byte("not a zip"), DefaultMaxSize)
	assert.ErrorIs(t, err, ErrInvalidArchive)

	data := buildZip(t, Member{Name: "big.xml", Data: bytes.Repeat([]byte("x"), 100)})
	_, err = Unwrap(data, 10)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Contains(t, err.Error(), "big.xml")
}

func TestDecompress(t *testing.T) {
	payload := []byte("<doc>payload</doc>")

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, err := gw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	zst := enc.EncodeAll(payload, nil)
	require.NoError(t, enc.Close())

	for name, in := range map[string][]byte{"plain": payload, "gzip": gz.Bytes(), "zstd": zst} {
		t.Run(name, func(t *testing.T) {
			out, err := Decompress(in, DefaultMaxSize)
			require.NoError(t, err)
			assert.Equal(t, payload, out)
		})
	}

	_, err = Decompress(gz.Bytes(), 4)
	assert.ErrorIs(t, err, ErrTooLarge)
}
