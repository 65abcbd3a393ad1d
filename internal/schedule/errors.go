package schedule

import "errors"

// Pipeline error kinds. Per-document failures wrap one of these so the
// batch surface can classify them without string matching.
var (
	// ErrUnparseableTime means no recognizable time pattern was found.
	ErrUnparseableTime = errors.New("unparseable time")

	// ErrUnparseableDate means no recognizable date pattern was found.
	ErrUnparseableDate = errors.New("unparseable date")

	// ErrEmptyDocumentText means the document produced no extractable text.
	ErrEmptyDocumentText = errors.New("empty document text")
)
