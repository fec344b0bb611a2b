// Package beattable holds the in-memory beat table and converts it to and
// from its persisted comma-separated form.
//
// The table is column oriented: every scene owns an ordered list of
// timestamp strings. Two on-disk layouts are accepted when reading:
//
//   - column-major (current): the header row lists scene identifiers, each
//     following row holds one beat index across all scenes.
//   - row-major (legacy): the first header cell is "scene", each following
//     row starts with a scene identifier and continues with that scene's
//     beats.
//
// There is no format marker; the first header cell decides. Writing always
// produces the column-major layout, so a legacy file is migrated on its first
// rewrite.
//
// Decoding is lenient. Ragged rows are padded, blank cells are skipped, and
// columns or rows naming scenes outside the registry are dropped. None of
// these raise errors; they are counted in DecodeStats instead.
package beattable
