package cmdapp

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

//Config is a viper based application config
var Config = viper.New()

//Log is applications logger
var Log = logrus.New()

//Duration reads a positive duration setting like "30m", def is returned if the setting is absent
func Duration(key string, def time.Duration) (time.Duration, error) {
	s := Config.GetString(key)
	if s == "" {
		return def, nil
	}
	res, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Wrapf(err, "Wrong %s", key)
	}
	if res <= 0 {
		return 0, errors.Errorf("Wrong %s: %s, must be positive", key, s)
	}
	return res, nil
}
