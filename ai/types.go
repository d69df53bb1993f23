package ai

// PayloadKind identifies what a segment payload carries.
type PayloadKind string

const (
	// PayloadText is transcript or slide text.
	PayloadText PayloadKind = "text"
	// PayloadImage is a slide or PDF page image reference.
	PayloadImage PayloadKind = "image"
)

// SegmentPayload is the already-extracted content of one segment, as handed
// to the entity spotter. Media decoding happens upstream; this type only
// carries the result.
type SegmentPayload struct {
	// Kind selects which field below is populated.
	Kind PayloadKind

	// Text is the transcript span or extracted slide text.
	Text string

	// ImageRef is a URL or data reference to the image payload.
	ImageRef string

	// Language is the lecture's primary language, e.g. "en".
	Language string
}

// SpottedEntity is one candidate concept occurrence returned by the spotter.
type SpottedEntity struct {
	// Surface is the entity text as it appears, lowercase, 1-3 words.
	Surface string

	// SpanStart/SpanEnd locate the occurrence within the segment, in the
	// segment's own offset unit (seconds or pages). Zero spans are valid
	// for image payloads.
	SpanStart float64
	SpanEnd   float64

	// Confidence is the spotter's score in [0,1]. Entities below the
	// configured minimum are filtered out before reaching the pipeline.
	Confidence float64
}
