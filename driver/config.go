package driver

import (
	"bytes"
	"io"
	"os"

	"github.com/nickng/loopswap/interchange"
	"github.com/nickng/loopswap/loop"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Configurer builds a Driver step by step.
type Configurer interface {
	Driver() *Driver
	Default() Configurer
	WithOracle(o interchange.Oracle) Configurer
	DenyFuncs(reason string, funcs ...string) Configurer
	OnlyFuncs(funcs ...string) Configurer
	WithDOTDir(dir string) Configurer
	WithDiff(w io.Writer) Configurer
	WithLogFiles(files ...string) Configurer
}

// Config represents a driver configuration. Its exported fields are the
// ones read from a TOML config file:
//
//	deny = ["f", "g"]
//	deny_reason = "writes a[i][j+1]"
//	only = ["f"]
//	dot_dir = "out/dot"
//
type Config struct {
	Deny       []string `toml:"deny"`
	DenyReason string   `toml:"deny_reason"`
	Only       []string `toml:"only"`
	DOTDir     string   `toml:"dot_dir"`

	oracle   interchange.Oracle
	diff     io.Writer
	logFiles []string
}

// NewConfig returns an empty configuration.
func NewConfig() Configurer {
	return &Config{}
}

// LoadConfig reads a configuration from the TOML file at path.
func LoadConfig(path string) (Configurer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read config %s", path)
	}
	c := new(Config)
	dec := toml.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return nil, errors.Wrapf(err, "cannot decode config %s", path)
	}
	return c, nil
}

// WithOracle sets the legality oracle. Functions denied by name are refused
// before o is asked.
func (c *Config) WithOracle(o interchange.Oracle) Configurer {
	c.oracle = o
	return c
}

// DenyFuncs refuses interchange in funcs.
func (c *Config) DenyFuncs(reason string, funcs ...string) Configurer {
	c.Deny = append(c.Deny, funcs...)
	if reason != "" {
		c.DenyReason = reason
	}
	return c
}

// OnlyFuncs restricts the driver to funcs.
func (c *Config) OnlyFuncs(funcs ...string) Configurer {
	c.Only = append(c.Only, funcs...)
	return c
}

// WithDOTDir writes DOT graphs of rewritten functions to dir.
func (c *Config) WithDOTDir(dir string) Configurer {
	c.DOTDir = dir
	return c
}

// WithDiff writes a diff of rewritten functions to w.
func (c *Config) WithDiff(w io.Writer) Configurer {
	c.diff = w
	return c
}

// WithLogFiles logs to the given files.
func (c *Config) WithLogFiles(files ...string) Configurer {
	c.logFiles = append(c.logFiles, files...)
	return c
}

// Default approves every nest not denied.
func (c *Config) Default() Configurer {
	return c.WithOracle(interchange.AllowAll)
}

// Driver returns a Driver for c.
func (c *Config) Driver() *Driver {
	oracle := c.oracle
	if oracle == nil {
		oracle = interchange.AllowAll
	}
	if len(c.Deny) > 0 {
		deny := interchange.NewDenyList(c.DenyReason, c.Deny...)
		next := oracle
		oracle = interchange.OracleFunc(func(desc loop.Description) interchange.Verdict {
			if v := deny.Legal(desc); !v.Legal {
				return v
			}
			return next.Legal(desc)
		})
	}
	d := New(oracle)
	for _, f := range c.Only {
		d.Only[f] = true
	}
	d.DOTDir = c.DOTDir
	if c.diff != nil {
		d.SetDiff(c.diff)
	}
	if len(c.logFiles) > 0 {
		d.AddLogFiles(c.logFiles...)
	}
	return d
}
