// Package xsdgen generates classes from xml schema documents.
//
// Every simple and complex type declared in a schema becomes one
// class. Simple types hold a single validated value; the facets of
// the type and of every type it is derived from are flattened into
// constructor guards. Complex types hold one property per element and
// attribute, and extend the class of the type they extend. Repeated
// elements are held by collection classes that enforce the element's
// occurrence bounds. Built-in types without a primitive counterpart,
// such as xs:dateTime or xs:unsignedByte, are generated from
// templates the first time they are used.
//
// Classes are written as PHP 7.0 or 7.1 files, one directory per
// namespace below a configurable prefix, or as files of a single Go
// package. Every generated class can serialize itself as XML through
// an output stream written alongside it.
package xsdgen
