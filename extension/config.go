package extension

// Config holds the Recur extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.recur" or "recur" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// Manager is an operator account allowed to cancel any subscription
	// in addition to its payer. Empty disables the manager role.
	Manager string `json:"manager" mapstructure:"manager" yaml:"manager"`

	// RollbackOnPullFailure restores the previous due date when a
	// settlement pull fails, so the cycle can be retried. The default
	// keeps the advanced schedule and skips the missed cycle.
	RollbackOnPullFailure bool `json:"rollback_on_pull_failure" mapstructure:"rollback_on_pull_failure" yaml:"rollback_on_pull_failure"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}
