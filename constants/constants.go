// Common vars and constants, shared by many parts of the deposit library.
package constants

import (
	"regexp"
	"time"
)

// Deposit status enumerations. These match the values the
// persistence layer stores in its deposit records.
const (
	StatusFailed    = "failed"
	StatusFaked     = "faked"
	StatusPending   = "pending"
	StatusPublished = "published"
	StatusRefused   = "refused"
	StatusDeleted   = "deleted"
)

var DepositStatusTypes []string = []string{
	StatusFailed,
	StatusFaked,
	StatusPending,
	StatusPublished,
	StatusRefused,
	StatusDeleted,
}

// Protocol identifiers. These are the keys under which deposit
// protocols register themselves, and the values repositories use
// in their "protocol" setting.
const (
	ProtocolOSF = "OSFProtocol"
)

// DepositionPrefix begins the identifier of every OAI record we
// create after a successful deposit. The full identifier is
// deposition:<repository id>:<deposit identifier>.
const DepositionPrefix = "deposition"

// GenericDepositFailure is the only message users see when a deposit
// fails for a reason other than a DepositError. The details go
// to the deposit log.
const GenericDepositFailure = "Failed to connect to the repository. Please try again later."

// Default path format for the paper page in notification payloads.
const DefaultPaperURLFormat = "/paper/%d/"

// Timeouts used when the config file does not set them.
const (
	DefaultRequestTimeout = 60 * time.Second
	DefaultAttemptTimeout = 10 * time.Minute
)

// NSQ topic and channel defaults for deposit requests.
const (
	DepositTopic   = "deposit_request"
	DepositChannel = "deposit_worker"
)

// OSF API settings.
const (
	OSFSandboxAPIURL       = "https://test-api.osf.io/"
	OSFSandboxPublicURL    = "https://test.osf.io/"
	OSFSandboxNoLicenseID  = "58fd62fcda3e2400012ca5cc"
	OSFProductionAPIURL    = "https://api.osf.io/"
	OSFProductionPublicURL = "https://osf.io/"
	OSFProductionNoLicense = "563c1cf88c5e4a3877f9e965"
	OSFProviderID          = "osf"
	OSFNodeCategory        = "project"
	OSFUploadFileName      = "article.pdf"
	JsonApiContentType     = "application/vnd.api+json"
)

// OSF environment names, as they may appear in a repository's
// "environment" setting.
const (
	EnvSandbox    = "sandbox"
	EnvProduction = "production"
)

// S3UriPattern matches PDF sources stored in S3-compatible storage,
// like s3://bucket/path/to/article.pdf
var S3UriPattern = regexp.MustCompile(`^s3://([^/]+)/(.+)$`)

// Four digit year at the start of a date string.
var LeadingYearPattern = regexp.MustCompile(`^(\d{4})`)
