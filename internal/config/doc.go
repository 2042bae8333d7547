// Package config loads, normalizes, and validates sca configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SCA_DEVICE and SCA_DATA_DIR. The Config type centralizes the acquisition
// request, the decoder parameters and the output directories so the CLI
// discovers every knob in one pass.
package config
