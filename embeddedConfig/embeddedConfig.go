package embeddedConfig

import _ "embed"

// Toml is the built-in configuration, used when no config file is found.
//
//go:embed xkeysend.conf
var Toml string
