// Package source loads named properties files.
//
// # Usage
//
//	loader, err := source.NewLoader(source.Config{BaseDir: "/etc/myapp", UseCache: true})
//	if err != nil {
//	    return err
//	}
//	src, err := loader.Load("example.properties", bundled) // bundled may be nil
//	if errors.Is(err, source.ErrSourceNotFound) {
//	    ...
//	}
//	author, ok := src.Lookup("author")
//
// # Lookup Order
//
// A source is looked up in two backends:
//
//  1. Bundled resources: the fs.FS handed to Load (for example an embed.FS)
//  2. Filesystem: Config.BaseDir joined with the source name
//
// Config.PreferFilesystem swaps the order. The first backend that opens the
// file wins and the other one is not touched.
//
// # Caching
//
// With Config.UseCache the first successful load of a name is kept and
// returned to every later caller. Concurrent loads of a name that is not yet
// cached share a single backend lookup. Failed loads are not cached, so a
// later call retries storage.
package source
