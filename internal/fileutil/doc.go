// Package fileutil discovers input files for trialsift.
//
// Every stage of the pipeline (corpus reading, categorising, exporting and the
// parity check) walks directory trees through ScanDirectory so that discovery
// order is the same everywhere: absolute paths, sorted lexicographically, hidden
// directories and files skipped. Per-entry access errors are collected in ScanResult.Errors
// and never stop the walk; only a missing root or a bad pattern is fatal.
//
// Typical use, finding every JSON document under an extraction directory:
//
//	result, err := fileutil.ScanDirectory("data/extracted/2024-06", fileutil.ScanOptions{
//	    Extensions: []string{".json"},
//	    Recursive:  true,
//	})
//	if err != nil {
//	    return err
//	}
//	for _, path := range result.Files {
//	    ...
//	}
package fileutil
