// Package conf implements drop-in configuration file support for propbind.
//
// # Usage
//
// The global Configuration variable is automatically loaded at package initialization:
//
//	import "github.com/propbind/propbind/internal/conf"
//
//	func main() {
//	    loader, err := source.NewLoader(conf.Configuration.SourceConfig())
//	}
//
// For custom configuration loading (e.g., testing), use ConfigSource:
//
//	cs := &conf.ConfigSource{
//	    Path:      "/custom/path/config.toml",
//	    DropInDir: "/custom/path/config.toml.d",
//	}
//	config, err := cs.Read()
//
// # Load Order
//
// Config is loaded and applied in three layers:
//
//  1. In-memory defaults (default.toml, embedded)
//  2. Main config file: /etc/propbind/config.toml
//  3. Drop-in files: /etc/propbind/config.toml.d/*.toml, in lexicographic order
//
// The configuration is read once; properties file lookups done by the
// loader never re-read it.
//
// # Keys
//
//   - base-dir: directory relative properties file names are resolved against
//   - prefer-filesystem: try the filesystem before bundled resources
//   - use-cache: keep loaded properties files by name
//   - cache-size: bound on cached properties files, 0 for unbounded
//   - log-level: DEBUG, INFO, WARN or ERROR
//
// # Internal Architecture
//
//   - configDTO: internal struct with pointer fields for TOML parsing.
//     Pointers allow distinguishing "not set" (nil) from "set to zero value".
//
//   - Config: public struct with value fields. Has Update() method
//     to apply DTO values.
//
//   - ConfigSource: orchestrates loading from multiple sources and manages
//     their merging.
package conf
