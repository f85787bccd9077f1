// Package manifest loads and validates batch manifests. A manifest lists the
// GitHub folders to snapshot in one run, with optional per-source branch and
// timeout overrides.
//
// # Manifest Format
//
// Manifests can be written in YAML or JSON format:
//
//	sources:
//	  - url: https://github.com/org/repo/tree/main/docs
//	  - url: https://github.com/org/other/examples
//	    branch: develop
//	    timeout: 120
//	options:
//	  continue_on_error: true
//	  output: ./snapshots
//	  concurrency: 4
//	  timeout: 30
//
// Timeouts are whole seconds.
//
// # Usage
//
//	loader := manifest.NewLoader()
//	cfg, err := loader.Load("repos.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, source := range cfg.Sources {
//	    req := source.Request(cfg.Options)
//	}
//
// # Error Handling
//
// The package defines sentinel errors for common failure cases:
//   - ErrNoSources: manifest has no sources defined
//   - ErrEmptyURL: source is missing required URL field
//   - ErrInvalidFormat: file is not valid YAML/JSON
//   - ErrFileNotFound: manifest file does not exist
//   - ErrUnsupportedExt: unsupported file extension
package manifest
