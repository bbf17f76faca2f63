package entity

// RawDocument is the ephemeral input to a pipeline run: the uploaded bytes
// plus the declared media type. The orchestrator archives a durable copy;
// the RawDocument itself is never persisted.
type RawDocument struct {
	Data      []byte
	MediaType string
	Filename  string // optional, used for extension hints and archive names
}

// EngineConfig identifies the page-segmentation configuration that produced
// the winning OCR candidate.
type EngineConfig string

const (
	EngineBlock   EngineConfig = "BLOCK"   // uniform block of text
	EngineColumn  EngineConfig = "COLUMN"  // single column of variable sizes
	EngineMinimal EngineConfig = "MINIMAL" // last-chance single pass
	EngineNone    EngineConfig = "NONE"    // nothing usable was produced
)

// OcrResult is the outcome of text acquisition. Produced once per document
// and immutable afterward. An empty result with score 0 is a valid
// low-quality outcome, not an error.
type OcrResult struct {
	Text         string       `json:"text"`
	QualityScore int          `json:"quality_score"`
	EngineConfig EngineConfig `json:"engine_config"`
}
