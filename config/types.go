package config

const (
	ContextFileEnvVar         = "RACKFISH_CONTEXTS_FILE"
	DefaultContextCatalogPath = "~/.rackfish/contexts.yaml"

	ServiceRootPath = "/redfish/v1"
	SessionsPath    = "/redfish/v1/SessionService/Sessions"
)

// ContextSelection picks a catalog entry, optionally overriding single
// fields for the one invocation without touching the stored catalog.
type ContextSelection struct {
	Name      string
	Overrides map[string]string
}

type ContextCatalog struct {
	Contexts   []Context `yaml:"contexts"`
	CurrentCtx string    `yaml:"current-ctx"`
}

type Context struct {
	Name        string            `yaml:"name"`
	Endpoint    Endpoint          `yaml:"endpoint"`
	Inventory   *Inventory        `yaml:"inventory,omitempty"`
	Preferences map[string]string `yaml:"preferences,omitempty"`
}

type Endpoint struct {
	BaseURL        string            `yaml:"base-url"`
	DefaultHeaders map[string]string `yaml:"default-headers,omitempty"`
	Auth           *EndpointAuth     `yaml:"auth,omitempty"`
	TLS            *TLS              `yaml:"tls,omitempty"`
}

type EndpointAuth struct {
	BasicAuth *BasicAuth   `yaml:"basic-auth,omitempty"`
	Session   *SessionAuth `yaml:"session,omitempty"`
}

type BasicAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SessionAuth logs in through the Redfish session service and sends the
// issued X-Auth-Token on every request.
type SessionAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type TLS struct {
	InsecureSkipVerify bool   `yaml:"insecure-skip-verify,omitempty"`
	CACertFile         string `yaml:"ca-cert-file,omitempty"`
	ClientCertFile     string `yaml:"client-cert-file,omitempty"`
	ClientKeyFile      string `yaml:"client-key-file,omitempty"`
}

type Inventory struct {
	Filesystem *FilesystemInventory `yaml:"filesystem,omitempty"`
	Git        *GitInventory        `yaml:"git,omitempty"`
}

type FilesystemInventory struct {
	BaseDir string `yaml:"base-dir"`
}

type GitInventory struct {
	BaseDir        string `yaml:"base-dir"`
	AutoInit       *bool  `yaml:"auto-init,omitempty"`
	CommitterName  string `yaml:"committer-name,omitempty"`
	CommitterEmail string `yaml:"committer-email,omitempty"`
}

func (g GitInventory) AutoInitEnabled() bool {
	if g.AutoInit == nil {
		return true
	}
	return *g.AutoInit
}
