package library

import (
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	skilltypes "github.com/skillbuilder/skillbuilder/pkg/types/skills"
)

// ApplyPatch shallow-merges patch over record using the record's JSON
// field names. Keys absent from patch are left untouched and the ID is
// always preserved.
func ApplyPatch(record skilltypes.Record, patch skilltypes.Patch) (skilltypes.Record, error) {
	merged := record

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     &merged,
		TagName:    "json",
		ZeroFields: false,
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return skilltypes.Record{}, errors.Wrap(err, "failed to create patch decoder")
	}

	if err := decoder.Decode(map[string]any(patch)); err != nil {
		return skilltypes.Record{}, skilltypes.NewError(skilltypes.KindValidation, "Invalid skill update.", err)
	}

	merged.ID = record.ID
	return merged, nil
}
