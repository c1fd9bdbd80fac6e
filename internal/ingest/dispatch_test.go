package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchKnownPairs(t *testing.T) {
	for _, e := range DispatchTable() {
		for _, code := range e.TypeCodes {
			s, err := Dispatch(e.RootTag, code)
			require.NoError(t, err, "%s/%s", e.RootTag, code)
			assert.Equal(t, e.Strategy, s.Name)
		}
	}
}

func TestDispatchKinds(t *testing.T) {
	tests := []struct {
		root string
		code string
		kind Kind
	}{
		{"GL_MarketDocument", "A65", KindStandard},
		{"Publication_MarketDocument", "A44", KindStandard},
		{"TransmissionNetwork_MarketDocument", "A63", KindStandard},
		{"Balancing_MarketDocument", "A85", KindStandard},
		{"Balancing_MarketDocument", "A87", KindFinancialPrice},
		{"Configuration_MarketDocument", "A95", KindMasterRecord},
		{"Unavailability_MarketDocument", "A80", KindOutage},
		{"CriticalNetworkElement_MarketDocument", "B11", KindFlowBased},
	}

	for _, tt := range tests {
		t.Run(tt.root+"/"+tt.code, func(t *testing.T) {
			s, err := Dispatch(tt.root, tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, s.Kind)
			assert.Equal(t, tt.kind.String(), s.Name)
		})
	}
}

func TestDispatchUnsupported(t *testing.T) {
	_, err := Dispatch("GL_MarketDocument", "A44")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedDocumentType)

	var ue *UnsupportedDocumentTypeError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "GL_MarketDocument", ue.RootTag)
	assert.Equal(t, "A44", ue.TypeCode)
	assert.Contains(t, err.Error(), "GL_MarketDocument")
	assert.Contains(t, err.Error(), "A44")
}

func TestDispatchTableIsACopy(t *testing.T) {
	tbl := DispatchTable()
	tbl[0].TypeCodes[0] = "ZZZ"
	assert.NotEqual(t, "ZZZ", DispatchTable()[0].TypeCodes[0])
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "unsupported", Outcome(&UnsupportedDocumentTypeError{}))
	assert.Equal(t, "malformed", Outcome(malformed("x")))
	assert.Equal(t, "invalid_resolution", Outcome(&InvalidResolutionError{Code: "x"}))
	assert.Equal(t, "length_mismatch", Outcome(&LengthMismatchError{}))
	assert.Equal(t, "collision", Outcome(&MetadataCollisionError{Path: "a"}))
	assert.Equal(t, "acknowledgement", Outcome(&AcknowledgementError{Code: "999"}))
}
