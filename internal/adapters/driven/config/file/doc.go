// Package file provides file-based configuration adapters: a TOML settings
// store and a directory of user-editable prompt templates.
package file
