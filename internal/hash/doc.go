// Package hash computes the CRC32-Castagnoli checksums stored in dataset files.
//
//	sum := hash.CRC32C(payload)
//	if err := hash.Verify(payload, sum); err != nil { ... }
package hash
