// Package core reads the syntax layer of a PDF file: objects, the lexer and
// parser, cross-reference sections and object streams.
//
// # Objects
//
// Every PDF value implements [Object]: [Null], [Bool], [Int], [Real],
// [String], [Name], [Array], [Dict], [*Stream] and [IndirectRef].
// Indirect references are plain values here; binding them to a document is
// the job of package store.
//
// # Cross-reference data
//
// [XRefParser.ReadSectionAt] reads one section, either a classic "xref"
// table or a /Type /XRef stream, and reports the /Prev offset of the section
// before it. [XRefParser.Resolve] walks that chain from the newest section
// to the oldest and merges it into an [XRefTable]: the first entry seen for
// an object number wins and the newest trailer is kept.
//
//	p := core.NewXRefParser(f)
//	table, err := p.ResolveFromEOF()
//	if errors.Is(err, core.ErrCircularXRef) {
//	    // the /Prev chain loops
//	}
//
// Errors about a section carry its offset in an [*XRefError]. Failures of
// the byte source are [*IOError] values matching [ErrIO].
//
// # Streams
//
// [Stream.Decode] applies the /Filter chain using package
// internal/filters. Object streams are read with [ObjectStream].
package core
