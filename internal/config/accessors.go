package config

import (
	"strings"

	"github.com/specialistvlad/suitegrid/internal/faults"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// GetString is Get under the name the other typed accessors share.
func (c *Config) GetString(section, option string) (string, error) {
	return c.Get(section, option)
}

// GetInt returns an option as an integer.
func (c *Config) GetInt(section, option string) (int, error) {
	v, err := c.typed(section, option, cty.Number)
	if err != nil {
		return 0, err
	}
	bf := v.AsBigFloat()
	if !bf.IsInt() {
		return 0, invalid(section, option, "%s is not an integer", bf.String())
	}
	i, _ := bf.Int64()
	return int(i), nil
}

// GetFloat returns an option as a float64.
func (c *Config) GetFloat(section, option string) (float64, error) {
	v, err := c.typed(section, option, cty.Number)
	if err != nil {
		return 0, err
	}
	f, _ := v.AsBigFloat().Float64()
	return f, nil
}

// GetBool returns an option as a boolean. Besides true/false it accepts the
// usual yes/no and on/off spellings.
func (c *Config) GetBool(section, option string) (bool, error) {
	s, err := c.Get(section, option)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "on", "1":
		s = "true"
	case "no", "off", "0":
		s = "false"
	}
	v, err := convert.Convert(cty.StringVal(strings.ToLower(strings.TrimSpace(s))), cty.Bool)
	if err != nil {
		return false, invalid(section, option, "%q is not a boolean", s)
	}
	return v.True(), nil
}

// GetList returns a comma separated option as a list with surrounding
// whitespace and empty items removed.
func (c *Config) GetList(section, option string) ([]string, error) {
	s, err := c.Get(section, option)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out, nil
}

func (c *Config) typed(section, option string, want cty.Type) (cty.Value, error) {
	s, err := c.Get(section, option)
	if err != nil {
		return cty.NilVal, err
	}
	v, err := convert.Convert(cty.StringVal(strings.TrimSpace(s)), want)
	if err != nil {
		return cty.NilVal, invalid(section, option, "%q is not a valid %s", s, want.FriendlyName())
	}
	return v, nil
}

func invalid(section, option, format string, args ...any) error {
	return faults.Config(faults.ErrInvalidValue, key{section, option}.String(), format, args...)
}
