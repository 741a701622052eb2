package domain

import (
	"fmt"
	"strings"
)

// DestinationConfig holds the connection parameters of the time-series sink.
type DestinationConfig struct {
	Host   string
	Org    string
	Bucket string
	Token  string
}

func (c DestinationConfig) Validate() error {
	var missing []string
	if c.Host == "" {
		missing = append(missing, "host")
	}
	if c.Org == "" {
		missing = append(missing, "org")
	}
	if c.Bucket == "" {
		missing = append(missing, "bucket")
	}
	if c.Token == "" {
		missing = append(missing, "token")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrConfig, strings.Join(missing, ", "))
	}
	return nil
}
