package config

import (
	"fmt"
	"strings"

	"btcprice-poller/internal/domain"

	"github.com/spf13/viper"
)

// LoadDestination reads host, org, bucket and token from the file at path.
// The format follows the file extension (toml, yaml, json, ...). INFLUX_HOST,
// INFLUX_ORG, INFLUX_BUCKET and INFLUX_TOKEN override the file values.
func LoadDestination(path string) (domain.DestinationConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("influx")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range []string{"host", "org", "bucket", "token"} {
		if err := v.BindEnv(k); err != nil {
			return domain.DestinationConfig{}, fmt.Errorf("%w: bind %s: %v", domain.ErrConfig, k, err)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		return domain.DestinationConfig{}, fmt.Errorf("%w: read %s: %v", domain.ErrConfig, path, err)
	}
	dest := domain.DestinationConfig{
		Host:   v.GetString("host"),
		Org:    v.GetString("org"),
		Bucket: v.GetString("bucket"),
		Token:  v.GetString("token"),
	}
	if err := dest.Validate(); err != nil {
		return domain.DestinationConfig{}, err
	}
	return dest, nil
}
