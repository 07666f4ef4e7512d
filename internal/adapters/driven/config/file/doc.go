// Package file persists configuration to a TOML file under the user's
// home directory, implementing the driven ConfigStore port.
package file
