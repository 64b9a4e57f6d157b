// Package workspace owns the staging tree a documentation build is prepared in.
//
// A Manager hands out the staging root, either persistent (a fixed path
// reused across builds so synchronization stays incremental) or ephemeral
// (a timestamped directory removed by Cleanup). The synchronizer mirrors
// resource directories into the staging tree, copying a file only when the
// destination is missing or older than the source.
package workspace
