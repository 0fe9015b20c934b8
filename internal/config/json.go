package config

import "encoding/json"

// jsonUnmarshal is split out from FromJSONFile purely so the import list
// above stays focused on the three competing config formats; encoding/json
// is the standard choice here since config DTOs are effectively JSON-shaped
// already and gin (an ambient dependency) uses it for all its own bodies.
func jsonUnmarshal(data []byte, cfg *ExtractionConfig) error {
	return json.Unmarshal(data, cfg)
}
