// Package serialization implements the .snet checkpoint format.
//
// A .snet file stores a named set of weight tensors plus optional training
// metadata. The layout is:
//
//	[4]  magic bytes "SNET"
//	[4]  format version (uint32, little-endian)
//	[8]  header size in bytes (uint64, little-endian)
//	[N]  JSON header
//	[P]  zero padding to a 64-byte boundary
//	[D]  tensor data section, tensors packed in header order
//
// The JSON header lists every tensor's name, dtype, shape, and offset within
// the data section, and carries a SHA-256 checksum of the data section so
// corruption is detected at load time. Tensors are written in sorted name
// order, so identical state dicts produce byte-identical files.
package serialization
