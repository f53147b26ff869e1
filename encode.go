package goldlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// The slot holds the whole list as a single JSON array, in display order:
//
//	[{"id":"...","date":"24.05.2025","price":"2450","quantity":"10"}]
//
// This is the format the mobile version of the app stores, so a slot copied
// from it can be read back as is.

// EncodePurchases writes purchases as a JSON array. An empty list is written as [].
func EncodePurchases(w io.Writer, purchases []Purchase) error {
	if purchases == nil {
		purchases = []Purchase{}
	}
	enc := json.NewEncoder(w)
	// keep '<', '>' and '&' readable in the stored text.
	enc.SetEscapeHTML(false)
	return enc.Encode(purchases)
}

// DecodePurchases reads a list written by EncodePurchases.
//
// Empty input (or a JSON null) is an empty list. Any other content must be an
// array of complete purchases with distinct ids.
func DecodePurchases(r io.Reader) ([]Purchase, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	content = bytes.TrimSpace(content)
	if len(content) == 0 {
		return nil, nil
	}

	var purchases []Purchase
	if err := json.Unmarshal(content, &purchases); err != nil {
		return nil, fmt.Errorf("format error: not a list of purchases: %w", err)
	}

	seen := make(map[string]bool, len(purchases))
	for i, p := range purchases {
		if p.ID == "" {
			return nil, fmt.Errorf("format error: purchase #%d has no id", i+1)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("format error: purchase #%d: id %q is already used", i+1, p.ID)
		}
		seen[p.ID] = true
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("format error: purchase #%d (id %q): %w", i+1, p.ID, err)
		}
	}
	return purchases, nil
}
