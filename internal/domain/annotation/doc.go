/*
Package annotation defines the annotation sum type and its factory,
validation and JSON interchange.

# Kinds

Every annotation is one of Text, Highlight, Shape, Arrow or Drawing. The
Annotation interface is sealed by an unexported method, so a type switch over
the five structs covers every case.

# Interchange

ExportAll writes an indented JSON array of flat records, each tagged with a
"type" field. ImportAll is lenient: malformed input is logged and produces an
empty set instead of an error.

	codec := annotation.NewCodec(logger)
	text, _ := codec.ExportAll(set)
	restored := codec.ImportAll(text)
*/
package annotation
