package config

// Backend names.
const (
	BackendLibgit2 = "libgit2"
	BackendGoGit   = "gogit"
)

// Output formats.
const (
	OutputText = "text"
	OutputYAML = "yaml"
	OutputJSON = "json"
)

// Backends lists the accepted backend values.
var Backends = []string{BackendLibgit2, BackendGoGit}

// Outputs lists the accepted output formats.
var Outputs = []string{OutputText, OutputYAML, OutputJSON}

// Default values.
const (
	DefaultBackend  = BackendLibgit2
	DefaultEncoding = "UTF-8"
	DefaultOutput   = OutputText
	DefaultLogLevel = "warn"
	DefaultLogJSON  = false
)

// DefaultIdentityScopes is searched in order, highest priority first.
var DefaultIdentityScopes = []string{"local", "global", "system"}
