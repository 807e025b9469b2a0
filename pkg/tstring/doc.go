// Package tstring implements template string literals: literals written
// with a t prefix, such as t"Hello {name!r:>10}", that evaluate to a
// structured Template instead of a string.
//
// A literal is handled in three stages. Parse scans the source, decoding
// escapes and collapsing doubled braces, and splits it into text segments
// and replacement fields. Literal.Compile binds the fields to an Evaluator,
// checking expression syntax up front when the evaluator implements
// Compiler. Program.Exec evaluates the expressions left to right and
// builds the Template.
//
// A Template holds n+1 text segments and n Interpolations. Each
// Interpolation keeps the evaluated value together with the expression
// text, conversion and format spec it was written with, so consumers can
// process the parts themselves or call Render to produce plain text.
//
// Every buffer and array the package creates is accounted for by an
// Allocator before it is allocated. When a reservation fails the operation
// stops and no partially built value is returned.
package tstring
