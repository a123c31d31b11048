package constants

// Application constants - single source of truth for naming throughout the codebase
const (
	// Core application identity
	AppName        = "Block Manager"
	BinaryName     = "block-manager"
	ProjectTagline = "Decide which blocks reach the editor"

	// Module and repository
	ModulePath    = "github.com/klauern/block-manager"
	RepositoryURL = "https://github.com/klauern/block-manager"

	// Configuration files
	ConfigFileName  = "config.toml"
	CatalogFileName = "blocks.yml"
	OptionsFileName = "options.json"

	// Log files
	DefaultLogFile = "block-manager.log"

	// Persisted option keys
	OptionDisabledGlobal  = "bm_disabled_blocks"
	OptionDisabledByType  = "bm_disabled_blocks_by_post_type"
	OptionPluginActivated = "bm_plugin_activated"

	// Authorization
	CapabilityManage    = "manage_options"
	NonceActionAutoSave = "bm_auto_save_nonce"
	DefaultTokenIssuer  = BinaryName

	// Environment and server defaults
	EnvPrefix            = "BM_"
	DefaultListenAddress = ":8080"
)
