package config

import (
	"time"

	"github.com/mitchellh/go-homedir"
)

// Duration is a time.Duration written as a string such as "10m" or "1h30m".
type Duration time.Duration

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Path is a file system path. A leading ~ is expanded to the home directory.
type Path string

func (p *Path) UnmarshalText(b []byte) error {
	*p = ToPath(string(b))
	return nil
}

// ToPath expands path. Paths that cannot be expanded are kept as given.
func ToPath(path string) Path {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return Path(path)
	}
	return Path(expanded)
}
