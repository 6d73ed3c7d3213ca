package panel

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelcert/panelcert/internal/browser"
	"github.com/panelcert/panelcert/internal/errors"
)

const recordsJSON = `[
	{"displayName": "example.com", "domainId": 101},
	{"displayName": "blog.example.com", "domainId": "102"}
]`

var wantRecords = []DomainRecord{
	{DisplayName: "example.com", DomainID: "101"},
	{DisplayName: "blog.example.com", DomainID: "102"},
}

func TestDecodeDomainRecordsShapeInvariance(t *testing.T) {
	// Both shipped shapes must yield identical records.
	shallow := fmt.Sprintf(`{"data": %s, "siteJetBannerProps": {}}`, recordsJSON)
	nested := fmt.Sprintf(`{"data": {"data": %s, "meta": {}}, "siteJetBannerProps": {}}`, recordsJSON)

	fromShallow, err := DecodeDomainRecords([]byte(shallow))
	require.NoError(t, err)
	fromNested, err := DecodeDomainRecords([]byte(nested))
	require.NoError(t, err)

	assert.Equal(t, wantRecords, fromShallow)
	assert.Equal(t, fromShallow, fromNested)
}

func TestDecodeDomainRecordsSchemaMismatch(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"no data field", `{"siteJetBannerProps": {}, "theme": "light"}`},
		{"data is a scalar", `{"data": 42}`},
		{"data.data is not a list", `{"data": {"data": {"nope": true}}}`},
		{"data object without nested data", `{"data": {"meta": {}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDomainRecords([]byte(tt.payload))
			assert.True(t, errors.Is(err, errors.ErrSchemaMismatch), "got %v", err)
		})
	}
}

func TestDecodeDomainRecordsMismatchNamesKeys(t *testing.T) {
	_, err := DecodeDomainRecords([]byte(`{"zeta": 1, "alpha": 2, "data": true}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[alpha data zeta]")
}

func TestDecodeDomainRecordsNotAnObject(t *testing.T) {
	_, err := DecodeDomainRecords([]byte(`[1, 2, 3]`))
	assert.True(t, errors.Is(err, errors.ErrPayloadParse), "got %v", err)
}

func TestCutPayload(t *testing.T) {
	script := `//<![CDATA[
		Plesk.require('app');
		Plesk.run({"note": "fake });", "data": [], "siteJetBannerProps": {}});
	//]]>`

	payload, err := CutPayload(script)
	require.NoError(t, err)
	// The last closing marker wins even when the object contains the
	// sequence in a string value.
	assert.Equal(t, `{"note": "fake });", "data": [], "siteJetBannerProps": {}}`, string(payload))
}

func TestCutPayloadMissingMarkers(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"no opening marker", `console.log("nothing here });"`},
		{"no closing marker", `Plesk.run({"data": []`},
		{"empty script", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CutPayload(tt.script)
			assert.True(t, errors.Is(err, errors.ErrPayloadParse), "got %v", err)
		})
	}
}

func TestExtractDomainRecords(t *testing.T) {
	script := fmt.Sprintf(`Plesk.run({"data": %s, "siteJetBannerProps": {}});`, recordsJSON)

	page := browser.NewMockPage()
	page.EvaluateFunc = func(expr string, out interface{}) error {
		*(out.(*string)) = script
		return nil
	}

	records, err := ExtractDomainRecords(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, wantRecords, records)
}

func TestExtractDomainRecordsNoScript(t *testing.T) {
	page := browser.NewMockPage() // Evaluate leaves the result empty

	_, err := ExtractDomainRecords(context.Background(), page)
	assert.True(t, errors.Is(err, errors.ErrPayloadParse), "got %v", err)
}

func TestStringIDNormalization(t *testing.T) {
	tests := []struct {
		name string
		json string
		want StringID
	}{
		{"number", `{"domainId": 101}`, "101"},
		{"string", `{"domainId": "101"}`, "101"},
		{"large number stays exact", `{"domainId": 9007199254740993}`, "9007199254740993"},
		{"null becomes empty", `{"domainId": null}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := DecodeDomainRecords([]byte(fmt.Sprintf(`{"data": [%s]}`, tt.json)))
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, tt.want, records[0].DomainID)
		})
	}
}
