// Package mmap provides read-only memory-mapped file access.
//
//	m, err := mmap.Open("ensemble.isng")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//	_ = m.Advise(mmap.AccessSequential)
//
// Unix platforms use mmap(2) with madvise(2) hints; Windows uses
// CreateFileMapping/MapViewOfFile and ignores hints.
//
// Close is idempotent. Slices returned by Bytes must not be used after Close.
package mmap
