package kreuzberg

import (
	"encoding/json"

	"github.com/Goldziher/kreuzberg-go/internal/kerr"
	"github.com/Goldziher/kreuzberg-go/internal/types"
)

// encodeResult/decodeResult give the cache a stable on-disk
// representation for a *types.ExtractionResult. JSON rather than a
// binary format: ExtractionResult is already the JSON-tagged DTO the
// HTTP API serializes verbatim, so caching its JSON encoding
// means a cache hit and a fresh extraction produce byte-identical
// /extract response bodies.
func encodeResult(result *types.ExtractionResult) ([]byte, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, kerr.NewSerializationError("encode extraction result for cache", err)
	}
	return data, nil
}

func decodeResult(data []byte) (*types.ExtractionResult, error) {
	var result types.ExtractionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, kerr.NewSerializationError("decode cached extraction result", err)
	}
	return &result, nil
}
