package remotemap

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// attrTag is the struct tag consulted when converting between typed config
// structs and attribute maps. It matches the tag the configuration loader
// uses, so local attribute names line up with mapping table entries.
const attrTag = "koanf"

// FromStruct converts a typed config object into the local attribute map the
// projector and change detector operate on. Field values keep their Go
// types; only the top level is flattened.
func FromStruct(v any) (map[string]any, error) {
	out := map[string]any{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: attrTag,
		Result:  &out,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(v); err != nil {
		return nil, fmt.Errorf("failed to convert %T to attributes: %w", v, err)
	}
	return out, nil
}

// ToStruct fills a typed config object from a local attribute map, the
// inverse of FromStruct. Used when reconstructing the local-shaped config
// tree from a live remote snapshot.
func ToStruct(attrs map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          attrTag,
		WeaklyTypedInput: true,
		ZeroFields:       true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(attrs); err != nil {
		return fmt.Errorf("failed to convert attributes to %T: %w", out, err)
	}
	return nil
}
