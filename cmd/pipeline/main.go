package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/slack-go/slack"
	"github.com/sociolens/sociolens/app_config"
	"github.com/sociolens/sociolens/collector"
	"github.com/sociolens/sociolens/collector/clients"
	collector_instances "github.com/sociolens/sociolens/collector/instances"
	"github.com/sociolens/sociolens/ingestion"
	"github.com/sociolens/sociolens/nlp"
	"github.com/sociolens/sociolens/pipeline"
	"github.com/sociolens/sociolens/pipeline/modules"
	"github.com/sociolens/sociolens/publisher"
	"github.com/sociolens/sociolens/utils"
	"github.com/sociolens/sociolens/utils/dotenv"
	Logger "github.com/sociolens/sociolens/utils/log"
)

var (
	AppConfigPath *string
	// Configuration to customize binary startup.
	AppConfig app_config.PipelineAppConfig
)

// init() will always be called on before the execution of main function.
func init() {
	AppConfigPath = flag.String("app_config_path", "cmd/pipeline/config.yaml", "path to pipeline app config")
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
}

func NewCollectorRegistry() *collector.Registry {
	bluesky := collector_instances.NewBlueskyCollector(clients.NewBlueskyClient(
		os.Getenv("BLUESKY_HOST"),
		os.Getenv("BLUESKY_HANDLE"),
		os.Getenv("BLUESKY_APP_PASSWORD"),
	))
	twitter := collector_instances.NewTwitterCollector()
	return collector.NewRegistry(bluesky, twitter)
}

func NewDogStatsdClient() *statsd.Client {
	client, err := statsd.New("127.0.0.1:8125")
	if err != nil {
		panic(err)
	}
	return client
}

func RunStartupSweep(enricher *nlp.Orchestrator) {
	swept, err := enricher.SweepUnprocessed(context.Background(), AppConfig.NLP_SWEEP_BATCH_SIZE)
	if err != nil {
		Logger.Log.Errorf("startup nlp sweep failed: %v", err)
		return
	}
	if swept > 0 {
		Logger.Log.Infof("startup nlp sweep picked up %d posts", swept)
	}
}

func buildModules(executor modules.Executor, scheduler *modules.Scheduler, eventbus *gochannel.GoChannel) []pipeline.Module {
	ms := []pipeline.Module{
		// Reporter reports the execution metrics to datadog for monitoring
		// purpose.
		modules.NewReporter(modules.ReporterConfig{Name: "reporter"}, NewDogStatsdClient(), eventbus),
		// Scheduler fires due rule cycles onto the EventBus.
		scheduler,
		// Orchestrator listens for pending cycles on the EventBus and executes
		// them, serialized per rule.
		modules.NewOrchestrator(
			modules.OrchestratorConfig{Name: "orchestrator"},
			executor,
			eventbus,
		),
	}

	// The Slack notifier is optional, only wired when a token is configured.
	if token := os.Getenv("SLACK_BOT_TOKEN"); token != "" {
		ms = append(ms, publisher.NewSlackNotifier(
			publisher.SlackNotifierConfig{Name: "slack_notifier", Channel: os.Getenv("SLACK_CHANNEL")},
			slack.New(token),
			eventbus,
		))
	}
	return ms
}

func main() {
	AppConfig = app_config.ParsePipelineAppConfig(*AppConfigPath)

	db, err := utils.GetDBConnectionWithBackoff(10)
	if err != nil {
		panic(err)
	}
	utils.DatabaseSetupAndMigration(db)

	registry := NewCollectorRegistry()
	ingestor := ingestion.NewEngine(db)
	// The model handles are constructed once here and owned by the
	// orchestrator, per-post calls never reload anything.
	enricher := nlp.NewOrchestrator(db, nlp.NewVaderSentimentAnalyzer(), nlp.NewProseEntityExtractor())

	RunStartupSweep(enricher)

	eventbus := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            100,
			BlockPublishUntilSubscriberAck: false,
		},
		watermill.NewStdLogger(false, false),
	)

	executor := modules.NewCycleExecutor(db, registry, ingestor, enricher)
	if AppConfig.FETCH_TIMEOUT_SECOND > 0 {
		executor.FetchTimeout = time.Duration(AppConfig.FETCH_TIMEOUT_SECOND) * time.Second
	}

	scheduler := modules.NewScheduler(
		modules.SchedulerConfig{
			Name:            "scheduler",
			RefreshInterval: time.Duration(AppConfig.SCHEDULER_REFRESH_SECOND) * time.Second,
			TickInterval:    time.Duration(AppConfig.SCHEDULER_TICK_SECOND) * time.Second,
		},
		db,
		modules.NewCycleJobDoer(eventbus),
	)

	ctx, cancel := context.WithCancel(context.Background())
	engine := pipeline.NewEngine(buildModules(executor, scheduler, eventbus), ctx, cancel, eventbus)

	// The pipeline's own HTTP surface: health, status, manual triggers,
	// reprocess and scrape state reset.
	go RunTriggerAPI(db, registry, scheduler, executor, enricher, eventbus, AppConfig.HTTP_ADDRESS)

	// Shut down gracefully on SIGINT/SIGTERM, letting in-flight cycles
	// finish.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		engine.Shutdown()
	}()

	// blocking call.
	engine.Run()

	Logger.Log.Infoln("engine stopped execution.")
}
