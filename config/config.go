package config

import (
	"os/user"
	"strings"
	"time"

	"github.com/go-ini/ini"
)

// AppVersion is the version string type
type AppVersion string

// GetVersion provides the current version of the project
func GetVersion() AppVersion {
	return "0.1-dev"
}

const (
	// ConfigFilename is the default config file name
	ConfigFilename = "matchops.cfg"
	// DefaultSystemConfigFilePath is the default system location of the configuration
	DefaultSystemConfigFilePath = "/etc/matchops/" + ConfigFilename
	// DefaultCurrentDirConfigFilePath is the config file path based on current working dir
	DefaultCurrentDirConfigFilePath = ConfigFilename
)

// EmptyConfigurationForError represents the configuration instance to be
// used when there is a configuration error during load
var EmptyConfigurationForError = &Config{}

var defaultLoadFunc = func(configFilePath string) (*ini.File, error) {
	if len(configFilePath) > 0 {
		return ini.LooseLoad([]byte(DefaultConfiguration), DefaultSystemConfigFilePath, getUserHomeDirBasedDefaultConfigFileLocation(), DefaultCurrentDirConfigFilePath, configFilePath)
	}
	return ini.LooseLoad([]byte(DefaultConfiguration), DefaultSystemConfigFilePath, getUserHomeDirBasedDefaultConfigFileLocation(), DefaultCurrentDirConfigFilePath)
}

var loadConfiguration = defaultLoadFunc

var currentUser = user.Current

func getUserHomeDirBasedDefaultConfigFileLocation() string {
	user, err := currentUser()
	if err != nil {
		return DefaultCurrentDirConfigFilePath
	}
	return user.HomeDir + "/.matchops/" + ConfigFilename
}

// RedisConfig represents connection configuration of the shared key/value store
type RedisConfig interface {
	GetRedisAddr() string
	GetRedisUsername() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisDialTimeout() time.Duration
	GetRedisReadTimeout() time.Duration
	GetRedisWriteTimeout() time.Duration
}

// HTTPConfig represents the HTTP configuration related behaviors
type HTTPConfig interface {
	GetHTTPListeningAddr() string
	GetHTTPReadTimeout() time.Duration
	GetHTTPWriteTimeout() time.Duration
}

// LogConfig represents the interface for log related configuration
type LogConfig interface {
	IsLoggerConfigAvailable() bool
	GetLogFilename() string
	GetMaxLogFileSize() uint
	GetMaxLogBackups() uint
	GetMaxAgeForALogFile() uint
	IsCompressionEnabledOnLogBackups() bool
}

// Config represents the application configuration
type Config struct {
	redisAddr              string
	redisUsername          string
	redisPassword          string
	redisDB                int
	redisDialTimeout       time.Duration
	redisReadTimeout       time.Duration
	redisWriteTimeout      time.Duration
	httpListeningAddr      string
	httpReadTimeout        time.Duration
	httpWriteTimeout       time.Duration
	logFilename            string
	maxFileSize            uint
	maxBackups             uint
	maxAge                 uint
	compressBackupsEnabled bool

	jobQueueNamespace  string
	queueNames         []string
	defaultQueue       string
	liveReportingQueue string

	threadCreateLead time.Duration
	reportingLead    time.Duration
	markerTTL        time.Duration

	breakerFailureThreshold int
	breakerRecoveryTimeout  time.Duration
	breakerMaxRetries       int
	breakerBaseBackoff      time.Duration
	breakerMaxBackoff       time.Duration

	botUpdateEndpoint    string
	botConnectionTimeout time.Duration
	botToken             string

	healthCheckCronSpec string
	snapshotRetention   time.Duration
	queueThresholds     map[string]int
	totalBacklogLimit   int
	archiveURL          string
	archiveObjectPrefix string
	archiveMaxSize      int64
	exportMinAge        time.Duration
}

// GetRedisAddr returns the Redis server address
func (config *Config) GetRedisAddr() string {
	return config.redisAddr
}

// GetRedisUsername returns the Redis username
func (config *Config) GetRedisUsername() string {
	return config.redisUsername
}

// GetRedisPassword returns the Redis password
func (config *Config) GetRedisPassword() string {
	return config.redisPassword
}

// GetRedisDB returns the Redis logical DB index
func (config *Config) GetRedisDB() int {
	return config.redisDB
}

// GetRedisDialTimeout returns the Redis dial timeout
func (config *Config) GetRedisDialTimeout() time.Duration {
	return config.redisDialTimeout
}

// GetRedisReadTimeout returns the Redis read timeout
func (config *Config) GetRedisReadTimeout() time.Duration {
	return config.redisReadTimeout
}

// GetRedisWriteTimeout returns the Redis write timeout
func (config *Config) GetRedisWriteTimeout() time.Duration {
	return config.redisWriteTimeout
}

// GetHTTPListeningAddr retrieves the connection string to listen to
func (config *Config) GetHTTPListeningAddr() string {
	return config.httpListeningAddr
}

// GetHTTPReadTimeout retrieves the connection read timeout
func (config *Config) GetHTTPReadTimeout() time.Duration {
	return config.httpReadTimeout
}

// GetHTTPWriteTimeout retrieves the connection write timeout
func (config *Config) GetHTTPWriteTimeout() time.Duration {
	return config.httpWriteTimeout
}

// IsLoggerConfigAvailable checks is logger configuration is set since its optional
func (config *Config) IsLoggerConfigAvailable() bool {
	return len(config.logFilename) > 0
}

// GetLogFilename retrieves the file name of the log
func (config *Config) GetLogFilename() string {
	return config.logFilename
}

// GetMaxLogFileSize retrieves the max log file size before its rotated in MB
func (config *Config) GetMaxLogFileSize() uint {
	return config.maxFileSize
}

// GetMaxLogBackups retrieves max rotated logs to retain
func (config *Config) GetMaxLogBackups() uint {
	return config.maxBackups
}

// GetMaxAgeForALogFile retrieves maximum day to retain a rotated log file
func (config *Config) GetMaxAgeForALogFile() uint {
	return config.maxAge
}

// IsCompressionEnabledOnLogBackups checks if log backups are compressed
func (config *Config) IsCompressionEnabledOnLogBackups() bool {
	return config.compressBackupsEnabled
}

// GetAutoConfiguration gets configuration from default config and system defined path chain of
// /etc/matchops/matchops.cfg, {USER_HOME}/.matchops/matchops.cfg, matchops.cfg (current dir)
func GetAutoConfiguration() (*Config, error) {
	return GetConfiguration("")
}

// GetConfigurationFromCLIConfig from CLIConfig
func GetConfigurationFromCLIConfig(cliConfig *CLIConfig) (*Config, error) {
	if len(cliConfig.ConfigPath) > 0 {
		return GetConfiguration(cliConfig.ConfigPath)
	}
	return GetAutoConfiguration()
}

// GetConfiguration gets the current state of application configuration
func GetConfiguration(configFilePath string) (*Config, error) {
	configuration := &Config{}
	cfg, err := loadConfiguration(configFilePath)
	if err != nil {
		return EmptyConfigurationForError, err
	}
	setupRedisConfiguration(cfg, configuration)
	setupJobQueueConfiguration(cfg, configuration)
	setupSchedulingConfiguration(cfg, configuration)
	setupBreakerConfiguration(cfg, configuration)
	setupBotServiceConfiguration(cfg, configuration)
	setupQueueHealthConfiguration(cfg, configuration)
	setupHTTPConfiguration(cfg, configuration)
	setupLogConfiguration(cfg, configuration)
	return configuration, nil
}

func setupRedisConfiguration(cfg *ini.File, configuration *Config) {
	redisSection, _ := cfg.GetSection("redis")
	address, _ := redisSection.GetKey("address")
	username, _ := redisSection.GetKey("username")
	password, _ := redisSection.GetKey("password")
	db, _ := redisSection.GetKey("db")
	dialTimeout, _ := redisSection.GetKey("dial-timeout-seconds")
	readTimeout, _ := redisSection.GetKey("read-timeout-seconds")
	writeTimeout, _ := redisSection.GetKey("write-timeout-seconds")
	configuration.redisAddr = address.MustString("localhost:6379")
	configuration.redisUsername = username.String()
	configuration.redisPassword = password.String()
	configuration.redisDB = db.MustInt(0)
	configuration.redisDialTimeout = time.Duration(dialTimeout.MustUint(5)) * time.Second
	configuration.redisReadTimeout = time.Duration(readTimeout.MustUint(3)) * time.Second
	configuration.redisWriteTimeout = time.Duration(writeTimeout.MustUint(3)) * time.Second
}

func setupJobQueueConfiguration(cfg *ini.File, configuration *Config) {
	queueSection, _ := cfg.GetSection("job-queue")
	namespace, _ := queueSection.GetKey("namespace")
	queues, _ := queueSection.GetKey("queues")
	defaultQueue, _ := queueSection.GetKey("default-queue")
	liveReportingQueue, _ := queueSection.GetKey("live-reporting-queue")
	configuration.jobQueueNamespace = namespace.MustString("jobq")
	configuration.queueNames = splitCSV(queues.MustString("live_reporting,default,notification,sync"))
	configuration.defaultQueue = defaultQueue.MustString("default")
	configuration.liveReportingQueue = liveReportingQueue.MustString("live_reporting")
}

func setupSchedulingConfiguration(cfg *ini.File, configuration *Config) {
	schedulingSection, _ := cfg.GetSection("scheduling")
	threadLead, _ := schedulingSection.GetKey("thread-create-lead-hours")
	reportingLead, _ := schedulingSection.GetKey("reporting-lead-minutes")
	markerTTL, _ := schedulingSection.GetKey("marker-ttl-hours")
	configuration.threadCreateLead = time.Duration(threadLead.MustUint(DefaultThreadCreateLeadHours)) * time.Hour
	configuration.reportingLead = time.Duration(reportingLead.MustUint(DefaultReportingLeadMinutes)) * time.Minute
	configuration.markerTTL = time.Duration(markerTTL.MustUint(DefaultMarkerTTLHours)) * time.Hour
}

func setupBreakerConfiguration(cfg *ini.File, configuration *Config) {
	breakerSection, _ := cfg.GetSection("circuit-breaker")
	failureThreshold, _ := breakerSection.GetKey("failure-threshold")
	recoveryTimeout, _ := breakerSection.GetKey("recovery-timeout-seconds")
	maxRetries, _ := breakerSection.GetKey("max-retries")
	baseBackoff, _ := breakerSection.GetKey("base-backoff-seconds")
	maxBackoff, _ := breakerSection.GetKey("max-backoff-seconds")
	configuration.breakerFailureThreshold = int(failureThreshold.MustUint(DefaultFailureThreshold))
	configuration.breakerRecoveryTimeout = time.Duration(recoveryTimeout.MustUint(DefaultRecoveryTimeoutSeconds)) * time.Second
	configuration.breakerMaxRetries = int(maxRetries.MustUint(DefaultMaxRetries))
	configuration.breakerBaseBackoff = time.Duration(baseBackoff.MustUint(1)) * time.Second
	configuration.breakerMaxBackoff = time.Duration(maxBackoff.MustUint(DefaultMaxBackoffSeconds)) * time.Second
}

func setupBotServiceConfiguration(cfg *ini.File, configuration *Config) {
	botSection, _ := cfg.GetSection("bot-service")
	endpoint, _ := botSection.GetKey("update-endpoint")
	timeout, _ := botSection.GetKey("connection-timeout-in-seconds")
	token, _ := botSection.GetKey("token")
	configuration.botUpdateEndpoint = endpoint.MustString("http://localhost:5001/api/live-updates")
	configuration.botConnectionTimeout = time.Duration(timeout.MustUint(30)) * time.Second
	configuration.botToken = token.String()
}

func setupQueueHealthConfiguration(cfg *ini.File, configuration *Config) {
	healthSection, _ := cfg.GetSection("queue-health")
	cronSpec, _ := healthSection.GetKey("check-cron")
	retention, _ := healthSection.GetKey("snapshot-retention-hours")
	totalLimit, _ := healthSection.GetKey("total-backlog-limit")
	archiveURL, _ := healthSection.GetKey("archive-url")
	archivePrefix, _ := healthSection.GetKey("archive-object-prefix")
	archiveMaxSize, _ := healthSection.GetKey("archive-max-size-in-bytes")
	exportMinAge, _ := healthSection.GetKey("export-min-age-hours")
	configuration.healthCheckCronSpec = cronSpec.MustString("@every 1m")
	configuration.snapshotRetention = time.Duration(retention.MustUint(DefaultSnapshotRetentionHours)) * time.Hour
	configuration.totalBacklogLimit = int(totalLimit.MustUint(DefaultTotalBacklogLimit))
	configuration.archiveURL = archiveURL.String()
	configuration.archiveObjectPrefix = archivePrefix.MustString("queue-health")
	configuration.archiveMaxSize = archiveMaxSize.MustInt64(10 * 1024 * 1024)
	configuration.exportMinAge = time.Duration(exportMinAge.MustUint(12)) * time.Hour
	configuration.queueThresholds = make(map[string]int)
	for _, queueName := range configuration.queueNames {
		thresholdKey, _ := healthSection.GetKey(strings.ReplaceAll(queueName, "_", "-") + "-threshold")
		configuration.queueThresholds[queueName] = int(thresholdKey.MustUint(uint(defaultQueueThreshold(queueName))))
	}
}

func setupHTTPConfiguration(cfg *ini.File, configuration *Config) {
	httpSection, _ := cfg.GetSection("http")
	httpListener, _ := httpSection.GetKey("listener")
	httpReadTimeout, _ := httpSection.GetKey("read-timeout")
	httpWriteTimeout, _ := httpSection.GetKey("write-timeout")
	configuration.httpListeningAddr = httpListener.MustString(":8080")
	configuration.httpReadTimeout = time.Duration(httpReadTimeout.MustUint(180)) * time.Second
	configuration.httpWriteTimeout = time.Duration(httpWriteTimeout.MustUint(180)) * time.Second
}

func setupLogConfiguration(cfg *ini.File, configuration *Config) {
	logSection, _ := cfg.GetSection("log")
	logFilenameKey, _ := logSection.GetKey("filename")
	maxFileSizeKey, _ := logSection.GetKey("max-file-size-in-mb")
	maxBackupsKey, _ := logSection.GetKey("max-backups")
	maxAgeKey, _ := logSection.GetKey("max-age-in-days")
	compressEnabledKey, _ := logSection.GetKey("compress-backups")
	configuration.logFilename = logFilenameKey.String()
	configuration.maxFileSize = maxFileSizeKey.MustUint(50)
	configuration.maxBackups = maxBackupsKey.MustUint(1)
	configuration.maxAge = maxAgeKey.MustUint(30)
	configuration.compressBackupsEnabled = compressEnabledKey.MustBool(false)
}

func splitCSV(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if len(item) > 0 {
			items = append(items, item)
		}
	}
	return items
}
