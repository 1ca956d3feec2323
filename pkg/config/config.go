package config

import "time"

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DB                string        // path to the sqlite store file
	NewDB             bool          // if true, the store file is dropped and recreated
	ResultsURL        string        // base URL of the results endpoint family
	TimingURL         string        // base URL of the timing endpoint family
	CORSProxy         string        // optional prefix applied to outgoing requests
	CacheEnabled      bool          // enable response cache
	CacheBackend      string        // memory, filesystem, sqlite
	CacheTTL          time.Duration // time to live for cached responses
	CachePath         string        // location for filesystem/sqlite cache backends
	FetchTimeout      time.Duration // per request timeout
	RateLimit         float64       // max requests per second against upstream (0: unlimited)
	PatchFile         string        // path to split distance patch document
	LogLevel          string        // sets the log level (zap log level values)
	LogFormat         string        // text vs json
	LogFilter         string        // zapfilter rules
	EnableTelemetry   bool          // enable telemetry
	TelemetryEndpoint string        // endpoint for telemetry (otlp grpc), empty: stdout
	Year              int           // season year used by session bound commands
	Championship      string        // championship short key (wrc, wrc2, ...)
	Category          string        // priority filter (P0 = all)
	EventID           int64         // event id, 0: current event of the season
	Source            string        // upstream family for stage data (timing, results)
	WaitForUpstream   string        // duration to wait for the upstream to respond
	OutputFormat      string        // table, csv, markdown
)

const (
	DefaultResultsURL = "https://api.wrc.com/results-api/"
	DefaultTimingURL  = "https://p-p.redbull.com/rb-wrccom-lintegration-yv-prod/api/"
)
