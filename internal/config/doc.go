// Package config provides configuration loading, merging, and validation
// facilities for the kinsync engine.
//
// Configuration is assembled from multiple sources in the following priority
// order (earlier sources override later ones for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//  4. Built-in defaults (conflict windows, retention, retry bounds)
//
// The main entry point is [GetStructuredConfig].
package config
