// Package codec persists decoded entities as semicolon separated tables.
//
// Three tables make up a dataset: the channel table (header
// plains;ciphers;keys, one row per record), the leak table (no header, one
// row per trace with a variable number of integer columns) and the meta
// table (header plus a single row of run parameters). Reading a missing or
// empty table yields an empty entity; a table with broken structure is an
// error.
package codec
