package gdx

import (
	"os"

	"github.com/gdxlib/gdx/section"
)

// envCompress reads GDXCOMPRESS (spec.md §6), returning the default
// write-compression flag. Unset or unrecognized values default to false.
func envCompress() bool {
	return os.Getenv("GDXCOMPRESS") == "1"
}

// envConvert reads GDXCONVERT ("v5"/"v7"), returning the version to
// downshift the written header to, and whether the variable was set to a
// recognized value.
func envConvert() (section.Version, bool) {
	v, ok := section.ParseVersion(os.Getenv("GDXCONVERT"))
	if !ok {
		return section.VersionCurrent, false
	}

	return v, true
}
