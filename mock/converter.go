package mock

import "github.com/fwojciec/blockimport"

var _ blockimport.Converter = (*Converter)(nil)

// Converter is a mock implementation of blockimport.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
