package runner

import (
	"github.com/spf13/pflag"

	"github.com/ssargent/ypbank/pkg/codec"
)

// FormatValue is a pflag.Value that only accepts codec formats.
type FormatValue codec.Format

var _ pflag.Value = (*FormatValue)(nil)

// NewFormatValue binds a flag to p.
func NewFormatValue(p *codec.Format) *FormatValue {
	return (*FormatValue)(p)
}

func (f *FormatValue) Set(s string) error {
	v, err := codec.ParseFormat(s)
	if err != nil {
		return err
	}
	*f = FormatValue(v)
	return nil
}

func (f *FormatValue) String() string {
	return string(*f)
}

func (f *FormatValue) Type() string {
	return "format"
}
