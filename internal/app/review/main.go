package review

import (
	"context"
	"time"

	"github.com/heptiolabs/healthcheck"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/airenas/listreview/internal/pkg/cmdapp"
	"github.com/airenas/listreview/internal/pkg/inform"
	"github.com/airenas/listreview/internal/pkg/metrics"
	"github.com/airenas/listreview/internal/pkg/mongo"
	"github.com/airenas/listreview/internal/pkg/persistence"
	"github.com/airenas/listreview/internal/pkg/rabbit"
	"github.com/airenas/listreview/internal/pkg/review"
	"github.com/airenas/listreview/internal/pkg/transcriber"
)

var appName = "LiST Review Service"

var rootCmd = &cobra.Command{
	Use:   "reviewService",
	Short: appName,
	Long:  `HTTP server to manage transcription jobs and their human review`,
	Run:   run,
}

func init() {
	cmdapp.InitApplication(rootCmd)
	rootCmd.PersistentFlags().Int32P("port", "", 8000, "Default service port")
	cmdapp.Config.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	cmdapp.Config.SetDefault("port", 8080)
}

//Execute starts the server
func Execute() {
	cmdapp.Execute(rootCmd)
}

// ownerEmails resolves emails through the registry created after the sinks
type ownerEmails struct {
	jobs *review.Registry
}

func (o *ownerEmails) OwnerEmail(ctx context.Context, jobID string) (string, error) {
	if o.jobs == nil {
		return "", errors.New("No registry")
	}
	return o.jobs.OwnerEmail(ctx, jobID)
}

func run(cmd *cobra.Command, args []string) {
	cmdapp.Log.Info("Starting " + appName)
	data := ServiceData{Port: cmdapp.Config.GetInt("port"), health: healthcheck.NewHandler(),
		metrics: metrics.NewService(metricsNamespace)}
	cmdapp.CheckOrPanic(data.metrics.Register(), "Can't init metrics")

	var store persistence.Store
	if url := cmdapp.Config.GetString("mongo.url"); url != "" {
		mongoSessionProvider, err := mongo.NewSessionProvider(url)
		cmdapp.CheckOrPanic(err, "Can't init mongo")
		defer mongoSessionProvider.Close()
		data.health.AddReadinessCheck("mongo", healthcheck.Async(mongoSessionProvider.Healthy, 10*time.Second))
		store, err = mongo.NewSnapshotStore(mongoSessionProvider)
		cmdapp.CheckOrPanic(err, "Can't init mongo store")
	} else {
		cmdapp.Log.Warn("No mongo.url, state is kept in memory only")
		store = persistence.NewMemoryStore()
	}

	data.Hub = NewHub()
	data.Listener = data.Hub
	sinks := []review.NotificationSink{data.Hub}
	if cmdapp.Config.GetString("messageServer.url") != "" {
		msgChannelProvider, err := rabbit.NewChannelProvider()
		cmdapp.CheckOrPanic(err, "Can't init rabbit channel provider")
		defer msgChannelProvider.Close()
		data.health.AddLivenessCheck("rabbit", healthcheck.Async(msgChannelProvider.Healthy, 10*time.Second))
		pub, err := rabbit.NewNotificationPublisher(rabbit.NewSender(msgChannelProvider))
		cmdapp.CheckOrPanic(err, "Can't init notification publisher")
		sinks = append(sinks, pub)
	}
	emails := &ownerEmails{}
	if cmdapp.Config.GetString("smtp.host") != "" {
		sink, closeF, err := newEmailSink(emails)
		cmdapp.CheckOrPanic(err, "Can't init email sink")
		defer closeF()
		sinks = append(sinks, sink)
	}

	ttl, err := cmdapp.Duration("lock.ttl", review.DefaultLockTTL)
	cmdapp.CheckOrPanic(err, "Can't read lock ttl")
	core, err := review.New(store, review.WithLockTTL(ttl), review.WithSinks(sinks...))
	cmdapp.CheckOrPanic(err, "Can't init review core")
	emails.jobs = core.Jobs
	cmdapp.CheckOrPanic(core.Load(context.Background()), "Can't load state")
	defer func() {
		cmdapp.LogIf(core.Close(context.Background()))
	}()
	data.Jobs, data.Locks, data.Notifications = core.Jobs, core.Locks, core.Notifier

	if cmdapp.Config.GetString("transcriber.url") != "" {
		tc, err := transcriber.NewClient()
		cmdapp.CheckOrPanic(err, "Can't init transcriber client")
		data.Transcriber = tc
	} else {
		cmdapp.Log.Warn("No transcriber.url, transcription submit is disabled")
	}

	err = StartWebServer(&data)
	cmdapp.CheckOrPanic(err, "Can't start web server")
	cmdapp.Log.Infof("Exiting service")
}

func newEmailSink(emails inform.EmailRetriever) (*inform.EmailSink, func(), error) {
	maker, err := inform.NewSimpleEmailMaker(cmdapp.Config)
	if err != nil {
		return nil, nil, errors.Wrap(err, "Can't init email maker")
	}
	sender, err := inform.NewSimpleEmailSender(cmdapp.Config)
	if err != nil {
		return nil, nil, errors.Wrap(err, "Can't init email sender")
	}
	var location *time.Location
	if l := cmdapp.Config.GetString("mail.location"); l != "" {
		if location, err = time.LoadLocation(l); err != nil {
			sender.Close()
			return nil, nil, errors.Wrap(err, "Can't init location")
		}
	}
	sink, err := inform.NewEmailSink(sender, maker, emails, location)
	if err != nil {
		sender.Close()
		return nil, nil, err
	}
	return sink, sender.Close, nil
}
