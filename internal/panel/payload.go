package panel

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/panelcert/panelcert/internal/browser"
	"github.com/panelcert/panelcert/internal/errors"
)

// The domain list is not in the DOM. It rides inside an inline bootstrap
// script that hands a JSON config object to the subsystem's JS runtime.
// These markers bracket that object.
const (
	// payloadOpenMarker starts the bootstrap invocation whose sole
	// argument is the config object.
	payloadOpenMarker = "Plesk.run("

	// payloadProbe is a field that only the bootstrap script containing
	// the domain list carries; it disambiguates from other inline
	// invocations of the same runtime.
	payloadProbe = "siteJetBannerProps"

	// payloadCloseMarker ends the invocation. The last occurrence is
	// authoritative because the object itself may contain the sequence.
	payloadCloseMarker = "});"
)

// findPayloadScript locates the inline script carrying the domain list
// and returns its text, empty when absent.
const findPayloadScript = `(() => {
	const scripts = Array.from(document.querySelectorAll('script'));
	const hit = scripts.find(s =>
		s.textContent.includes('Plesk.run(') &&
		s.textContent.includes('siteJetBannerProps'));
	return hit ? hit.textContent : '';
})()`

// StringID is an identifier the panel serializes as either a JSON
// number or a JSON string, normalized to its decimal text.
type StringID string

func (s *StringID) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("empty id")
	}
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = StringID(str)
		return nil
	}
	if string(b) == "null" {
		*s = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = StringID(n.String())
	return nil
}

// ExtractDomainRecords pulls the domain list from the subsystem page
// currently loaded in page.
func ExtractDomainRecords(ctx context.Context, page browser.Page) ([]DomainRecord, error) {
	var script string
	if err := page.Evaluate(ctx, findPayloadScript, &script); err != nil {
		return nil, errors.Wrap(errors.CodePayloadParse, "search page scripts", err)
	}
	if script == "" {
		return nil, errors.Wrap(errors.CodePayloadParse, "no script carries the bootstrap payload", nil)
	}

	payload, err := CutPayload(script)
	if err != nil {
		return nil, err
	}
	return DecodeDomainRecords(payload)
}

// CutPayload carves the JSON config object out of the bootstrap script
// text: everything between the invocation's opening parenthesis and the
// last closing marker.
func CutPayload(script string) ([]byte, error) {
	open := strings.Index(script, payloadOpenMarker)
	if open < 0 {
		return nil, errors.Wrap(errors.CodePayloadParse, "opening marker absent", nil)
	}
	rest := script[open+len(payloadOpenMarker):]

	end := strings.LastIndex(rest, payloadCloseMarker)
	if end < 0 {
		return nil, errors.Wrap(errors.CodePayloadParse, "closing marker absent", nil)
	}

	// Keep the object's own closing brace, drop ");".
	return []byte(strings.TrimSpace(rest[:end+1])), nil
}

// DecodeDomainRecords reads the domain list out of the payload. The
// subsystem has shipped the list at two nesting depths over time, so
// the decoder accepts both:
//
//	{"data": [ ... ]}            // list directly under data
//	{"data": {"data": [ ... ]}}  // list one level deeper
//
// Any other shape is a SCHEMA_MISMATCH carrying the observed top-level
// keys for diagnostics.
func DecodeDomainRecords(payload []byte) ([]DomainRecord, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(payload, &top); err != nil {
		return nil, errors.Wrap(errors.CodePayloadParse, "payload is not a JSON object", err)
	}

	data, ok := top["data"]
	if !ok {
		return nil, errors.SchemaMismatch(sortedKeys(top))
	}

	var records []DomainRecord
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var inner map[string]json.RawMessage
	if err := json.Unmarshal(data, &inner); err == nil {
		if nested, ok := inner["data"]; ok {
			if err := json.Unmarshal(nested, &records); err == nil {
				return records, nil
			}
		}
	}

	return nil, errors.SchemaMismatch(sortedKeys(top))
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
