// Package marshal turns one member descriptor into the statements that
// stream it.
//
// Each member is classified into a closed set of shapes (chain link,
// scalar, fixed array, dynamic array, string, string array, compound) and
// translated according to a Context: direction, whether the reader
// allocates pointed-to storage, and whether presence gating applies.
//
// Pointer members that are neither chain links nor output-only are gated
// on presence. The writer, and an allocating reader, stream the pointer slot
// itself as the presence flag and only stream the pointee when it is set. A
// reader decoding into caller-owned storage streams the flag into a
// check_<member> local and reports a diagnostic when it disagrees with the
// destination, then continues:
//
//	if (root->f) {
//	    if (!(check_f)) diagnostic; else { pointee }
//	} else if (check_f) diagnostic;
//
// The pointee is only read when both sides agree it is present. After a
// diagnostic for a member the stream has and the destination lacks, the
// pointee bytes are still in the stream, so the members that follow in the
// same call decode from the wrong offset and must not be trusted.
package marshal
