package cmdapp

import (
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "test",
		Long:  `test`,
		Run:   run}
}

func run(cmd *cobra.Command, args []string) {
	Log.Info("Starting reviewService")
}

func TestReadEnvironmentVariable(t *testing.T) {
	t.Setenv("MONGO_URL", "olia")
	InitApplication(newRootCmd())

	assert.Equal(t, "olia", Config.GetString("mongo.url"))
}

func TestReadConfig(t *testing.T) {
	initAppFromTempFile(t, "lock:\n     ttl: 5m\n")

	assert.Equal(t, "5m", Config.GetString("lock.ttl"))
}

func TestEnvBeatsConfig(t *testing.T) {
	t.Setenv("LOCK_TTL", "10m")
	initAppFromTempFile(t, "lock:\n     ttl: 5m\n")

	assert.Equal(t, "10m", Config.GetString("lock.ttl"))
}

func TestDefaultLogger(t *testing.T) {
	initDefaultLevel()
	initAppFromTempFile(t, "")

	assert.Equal(t, "info", Log.GetLevel().String())
}

func TestLoggerInitFromConfig(t *testing.T) {
	initDefaultLevel()
	initAppFromTempFile(t, "logger:\n    level: trace\n")

	assert.Equal(t, "trace", Log.GetLevel().String())
}

func TestLoggerLevelInitFromEnv(t *testing.T) {
	initDefaultLevel()

	t.Setenv("LOGGER_LEVEL", "trace")
	initAppFromTempFile(t, "logger:\n    level: info\n")

	assert.Equal(t, "trace", Log.GetLevel().String())
}

func TestDuration(t *testing.T) {
	Config.Set("test.ttl", "")
	d, err := Duration("test.ttl", time.Minute)
	assert.Nil(t, err)
	assert.Equal(t, time.Minute, d)

	Config.Set("test.ttl", "5m")
	d, err = Duration("test.ttl", time.Minute)
	assert.Nil(t, err)
	assert.Equal(t, 5*time.Minute, d)
}

func TestDuration_Fails(t *testing.T) {
	for _, v := range []string{"olia", "-5m", "0s"} {
		Config.Set("test.ttl", v)
		_, err := Duration("test.ttl", time.Minute)
		assert.NotNil(t, err, v)
	}
}

func TestInitConfig_MissingFile(t *testing.T) {
	configFile = "/no/such/dir/config.yaml"
	defer func() { configFile = "" }()

	assert.NotNil(t, initConfig())
}

func TestCheckOrPanic(t *testing.T) {
	assert.NotPanics(t, func() { CheckOrPanic(nil, "msg") })
	assert.Panics(t, func() { CheckOrPanic(os.ErrNotExist, "msg") })
	assert.Panics(t, func() { CheckOrPanic(os.ErrNotExist, "") })
}

func initAppFromTempFile(t *testing.T, data string) {
	f, err := os.CreateTemp("", "test.*.yml")
	assert.Nil(t, err)
	f.WriteString(data)
	f.Sync()

	defer os.Remove(f.Name())

	rootCmd := newRootCmd()
	rootCmd.SetArgs([]string{})
	InitApplication(rootCmd)
	configFile = f.Name()
	rootCmd.Execute()
}

func initDefaultLevel() {
	Log.SetLevel(logrus.ErrorLevel)
}
