// Package remotemap implements the declarative mapping layer between local
// configuration fields and their remote API representation.
//
// Each resource type declares a static table of entries; the projector
// functions in this package translate attribute sets in both directions
// using that table. Tables are plain values resolved through per-type
// registries, so projection stays a pure function of (mapping, data).
package remotemap

// Entry maps one local configuration field to its remote representation.
type Entry struct {
	// Local is the local field name, matching the struct's koanf tag.
	Local string

	// Remote is the remote attribute name, or the field name within the
	// resource's {name, value} field list when IsField is set.
	Remote string

	// IsField marks remote values that live inside the resource's nested
	// field list rather than as a top-level attribute. Used by polymorphic
	// resource types (indexers, download clients, metadata consumers)
	// whose parameters depend on the implementation.
	IsField bool

	// Default is substituted when decoding and the remote value is absent.
	// Only consulted when HasDefault is set; a nil default is meaningful.
	Default    any
	HasDefault bool

	// Decoder transforms the remote value into the local representation.
	// When the remote value is absent and no default applies, the decoder
	// is invoked with nil.
	Decoder func(v any) (any, error)

	// Encoder transforms the local value into the remote representation.
	Encoder func(v any) (any, error)

	// Set marks slice values that represent unordered sets; they compare
	// equal regardless of element order.
	Set bool

	// Precision bounds float comparison to the given number of decimal
	// places. Zero means exact comparison. Remote instances round float
	// settings, so exact comparison would report spurious changes.
	Precision int

	// Optional marks fields where an unset (nil) local value means the
	// field is unmanaged: the change detector leaves the remote value
	// alone unless the caller opts into managing unset fields.
	Optional bool

	// Compare overrides the default equality check for this entry.
	// Used for values whose natural identity is not structural, such as
	// specification lists keyed by name.
	Compare func(a, b any) bool
}

// decode applies the entry's decoder, or returns the value unchanged.
func (e Entry) decode(v any) (any, error) {
	if e.Decoder == nil {
		return v, nil
	}
	return e.Decoder(v)
}

// EncodeValue applies the entry's encoder, or returns the value unchanged.
func (e Entry) EncodeValue(v any) (any, error) {
	if e.Encoder == nil {
		return v, nil
	}
	return e.Encoder(v)
}
