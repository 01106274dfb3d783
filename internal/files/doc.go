// Package files discovers dataset files on disk.
//
// A Discovery is rooted at a base directory; relative paths passed to it
// are resolved against that directory. FindDatasets lists the CSV and
// Excel workbooks in a directory, newest first, so that the explorer can
// offer them for loading.
//
//	d := files.NewDiscovery("data")
//	found, err := d.FindDatasets(".")
package files
