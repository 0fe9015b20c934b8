// Package kreuzberg is the public entry point for the document-extraction
// engine: a MIME-routed, priority-ranked registry of format extractors
// exposed through a single entry point that also handles batch fan-out.
// Internally it wires together internal/mimedetect, internal/registry,
// internal/cache, internal/pipeline, internal/extractors, and
// internal/resource behind one client object.
//
// Typical usage:
//
//	engine, err := kreuzberg.New(kreuzberg.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := engine.ExtractFile(ctx, "invoice.pdf", "", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Content)
package kreuzberg
