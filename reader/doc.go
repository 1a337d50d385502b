// Package reader opens PDF files and gives access to their objects.
//
// # Opening PDF Files
//
//	r, err := reader.Open("document.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
// [NewReader] takes an open *os.File and [NewReaderAt] any io.ReaderAt.
// With [WithTempCopy] the file is copied first and the copy is read, so
// the original may be rewritten while the document is open. [WithMmap]
// maps the file into memory instead of reading it through a descriptor.
//
// Opening reads the header and the whole cross-reference chain. Objects
// are read later, the first time they are asked for, and then kept by the
// document's [store.Store].
//
// # Document Information
//
//   - Version() - PDF version (e.g., 1.7)
//   - Trailer() - trailer of the newest revision
//   - GetCatalog() - document catalog dictionary
//   - GetInfo() and InfoString(key) - document info dictionary
//
// # Object Resolution
//
//   - GetObject(objNum) - load object by number
//   - ResolveReference(ref) - resolve an IndirectRef
//   - Resolve(obj) - follow obj if it is a reference
//   - ResolveDeep(obj) - expand every reference inside obj
//
// Objects inside object streams are read transparently; the parsed
// streams are kept in a small cache sized with [WithMaxObjectStreamCache].
//
// # Encryption
//
// Opening a file with an /Encrypt dictionary fails with [ErrEncrypted]
// unless a [Decrypter] is given with [WithDecrypter]. The decrypter is
// handed the trailer and the resolved /Encrypt dictionary before any other
// object is loaded.
package reader
