package value

// Extract looks up field in a record or sub-record. The result is a scalar, an
// Array that the caller expands into numbered columns, or Absent when the field
// is missing or the container is not an object. Extract never recurses.
func Extract(container Value, field string) Value {
	return container.Get(field)
}

// IsSequence reports whether an extracted value must be expanded into
// positional columns.
func IsSequence(v Value) bool { return v.kind == KindArray }
