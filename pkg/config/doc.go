// Package config defines and loads the engine configuration.
//
// Configuration is read from a YAML file, filled in with defaults, and
// validated before use. Environment variables with the OECS_ prefix
// override file values (e.g. OECS_PROVIDER_API_KEY), which keeps
// secrets out of config files. Validation collects every problem into
// a single ValidationError rather than stopping at the first.
//
// A Watcher can observe the config file and invoke a reload callback
// when it changes; reloads affect newly created sessions only, since
// a live session's mode contract and allocation are fixed at consent.
package config
