package rules

import (
	"encoding/json"
	"io"

	"github.com/fwojciec/blockimport"
)

// Encode writes rs as an indented JSON transformation config.
func Encode(w io.Writer, rs *blockimport.Ruleset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rs)
}

// Decode reads a JSON transformation config and classifies its cell
// specifications with v. Returns EINVALID for malformed input.
func Decode(r io.Reader, v blockimport.SelectorValidator) (*blockimport.Ruleset, error) {
	var rs blockimport.Ruleset
	if err := json.NewDecoder(r).Decode(&rs); err != nil {
		return nil, blockimport.Errorf(blockimport.EINVALID, "invalid transformation config: %v", err)
	}
	for _, b := range rs.Blocks {
		if b == nil || b.Type == "" {
			return nil, blockimport.Errorf(blockimport.EINVALID, "invalid transformation config: block type required")
		}
	}
	rs.Classify(v)
	return &rs, nil
}
