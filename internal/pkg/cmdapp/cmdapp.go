package cmdapp

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/heirko/go-contrib/logrusHelper"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	configFile = ""
)

//InitApplication binds env variables and the --config flag, the config is read when the command starts
func InitApplication(rootCommand *cobra.Command) {
	// LOCK_TTL is found by viper with key lock.ttl
	Config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Config.AutomaticEnv()
	cobra.OnInitialize(func() {
		CheckOrPanic(initConfig(), "Can't init config")
	})
	rootCommand.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file (default is config.yaml next to the binary or in the working dir)")
}

func initConfig() error {
	if configFile != "" {
		Config.SetConfigFile(configFile)
	} else {
		ex, err := os.Executable()
		if err != nil {
			return errors.Wrap(err, "Can't get the app directory")
		}
		Config.AddConfigPath(filepath.Dir(ex))
		Config.AddConfigPath(".")
		Config.SetConfigName("config")
	}
	if err := Config.ReadInConfig(); err != nil {
		if configFile != "" {
			return errors.Wrapf(err, "Can't read %s", configFile)
		}
		Log.Warn("No config file, using defaults and environment: ", err)
	}
	if err := initLog(); err != nil {
		return err
	}
	Log.Info("Config loaded from: ", Config.ConfigFileUsed())
	return nil
}

func initLog() error {
	Config.SetDefault("logger", map[string]interface{}{
		"level":                              "info",
		"formatter.name":                     "text",
		"formatter.options.full_timestamp":   true,
		"formatter.options.timestamp_format": "2006-01-02T15:04:05.000",
	})
	c := logrusHelper.UnmarshalConfiguration(Config.Sub("logger"))
	return errors.Wrap(logrusHelper.SetConfig(Log, c), "Can't init logger")
}

//Execute runs the command, a panic is logged and ends the process with code 1
func Execute(cmd *cobra.Command) {
	defer func() {
		if r := recover(); r != nil {
			Log.Error(r)
			os.Exit(1)
		}
	}()
	if err := cmd.Execute(); err != nil {
		panic(err)
	}
}

//CheckOrPanic panics if err != nil
func CheckOrPanic(err error, msg string) {
	if err != nil {
		if msg == "" {
			panic(err)
		}
		panic(errors.Wrap(err, msg))
	}
}

//LogIf logs error if err != nil
func LogIf(err error) {
	if err != nil {
		Log.Error(err)
	}
}
