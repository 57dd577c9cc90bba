package domain

import "errors"

var (
	// ErrPipelineNotReady signals that the embedding pipeline has not been initialized.
	ErrPipelineNotReady = errors.New("embedding pipeline not ready")
	// ErrPipelineClosed signals a request against a shut-down pipeline.
	ErrPipelineClosed = errors.New("embedding pipeline closed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrProfileUnavailable signals that no resume text is present; the
	// candidate profile cannot be built from an empty resume.
	ErrProfileUnavailable = errors.New("profile unavailable: no resume text")
	// ErrJobNotFound signals a missing job.
	ErrJobNotFound = errors.New("job not found")
	// ErrEntityNotFound signals a missing story, document, or other entity.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrInvalidEntityType signals an unknown entity type.
	ErrInvalidEntityType = errors.New("invalid entity type")
)
