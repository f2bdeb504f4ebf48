// Package dataset stores labelled ensembles of Ising configurations.
//
// A Dataset pairs each lattice with the temperature it was sampled at. It is
// produced by Generate, persisted with Save/Load through any
// blobstore.BlobStore, and flattened into kmeans.Points for clustering.
//
// # File Format
//
//	offset  size        field
//	0       4           magic "ISNG"
//	4       2           version (1)
//	6       1           compression (0 none, 1 lz4, 2 zstd)
//	7       1           reserved
//	8       4           L
//	12      4           configuration count n
//	16      4           block size
//	20      8           coupling J (float64)
//	28      4           CRC32C of the packed spin payload
//	32      8n          temperatures (float64)
//	32+8n   ...         framed blocks of packed spins
//
// Each configuration is packed to ceil(L²/8) bytes, one bit per spin
// (1 = up), least significant bit first. All integers are little-endian.
package dataset
