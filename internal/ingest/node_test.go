package ingest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<GL_MarketDocument xmlns="urn:iec62325.351:tc57wg16:451-6:generationloaddocument:3:0">
  <mRID>abc</mRID>
  <type> A65 </type>
  <TimeSeries>
    <Period><resolution>PT60M</resolution></Period>
  </TimeSeries>
</GL_MarketDocument>`))
	require.NoError(t, err)

	assert.Equal(t, "GL_MarketDocument", doc.Tag)
	assert.Equal(t, "urn:iec62325.351:tc57wg16:451-6:generationloaddocument:3:0", doc.Space)
	require.Len(t, doc.Children, 3)
	assert.Equal(t, "A65", doc.TextAt("type"))
	assert.Equal(t, "PT60M", doc.TextAt("TimeSeries", "Period", "resolution"))
	assert.Equal(t, "", doc.TextAt("TimeSeries", "missing"))
	assert.Empty(t, doc.Child("TimeSeries").Text, "internal nodes carry no text")
}

func TestParseDocumentStripsPrefixes(t *testing.T) {
	doc, err := ParseDocument([]byte(`<ns:Doc xmlns:ns="urn:x"><ns:a>1</ns:a></ns:Doc>`))
	require.NoError(t, err)
	assert.Equal(t, "Doc", doc.Tag)
	assert.Equal(t, "1", doc.TextAt("a"))
}

func TestParseDocumentMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "   \n"},
		{"unbalanced", "<a><b></a>"},
		{"unclosed", "<a><b>1</b>"},
		{"two roots", "<a/><b/>"},
		{"text only", "hello"},
		{"no root", `<?xml version="1.0"?>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedDocument)

			var me *MalformedDocumentError
			require.True(t, errors.As(err, &me))
			assert.GreaterOrEqual(t, me.Offset, int64(0))
		})
	}
}
