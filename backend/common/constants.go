package common

import (
	"flag"
	"sync"
	"time"
)

var Version = "v0.3.0"
var SystemName = "InsightLink"
var ServerAddress = "http://localhost:3000"

var StartTime = time.Now().Unix()

// Command line flags
var (
	Port          = flag.Int("port", 3000, "the listening port")
	PrintVersion  = flag.Bool("version", false, "print version and exit")
	PrintHelpFlag = flag.Bool("help", false, "print help and exit")
	LogDir        = flag.String("log-dir", "", "specify the log directory")
	EnableGzip    = flag.Bool("gzip", true, "enable gzip compression for responses")
)

var (
	SessionSecret    = "" // generated into the config file on first start
	SQLitePath       = "data/insightlink.db"
	JWTSecret        = ""
	JWTRefreshSecret = ""
	RedisConnString  = ""
)

// Object storage (any S3-compatible backend, MinIO included)
var (
	S3Endpoint  = ""
	S3Region    = "us-east-1"
	S3Bucket    = "insightlink"
	S3AccessKey = ""
	S3SecretKey = ""
)

// Role constants
const (
	RoleGuestUser  = 0
	RoleCommonUser = 1
	RoleAdminUser  = 10
	RoleRootUser   = 100
)

// Status constants
const (
	UserStatusEnabled = 1
	UserStatusBlocked = 2
)

var ItemsPerPage = 10

// OptionMapRWMutex guards model.OptionMap. It lives here so that packages
// below model can take the lock without importing model.
var OptionMapRWMutex sync.RWMutex

// Rate limit knobs. Mark applies per client IP.
var (
	GlobalApiRateLimitNum      = 180
	GlobalApiRateLimitDuration int64 = 180

	CriticalRateLimitNum      = 20
	CriticalRateLimitDuration int64 = 1200
)

// How long a freshly issued download URL stays valid.
const (
	AccessURLValidity       = 6 * time.Hour
	BannedAccessURLValidity = 15 * time.Minute
	UploadURLValidity       = 15 * time.Minute
)

// Visits from the same link/visitor/IP inside this window collapse into one
// visit row. Repeated password attempts therefore never inflate visit counts.
const VisitSessionWindow = 30 * time.Minute

// Admin summary mail cadence: rechecked hourly, sent at most once per interval.
var AdminSummaryInterval = 24 * time.Hour
