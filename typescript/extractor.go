package typescript

import "github.com/fwojciec/sdkdrift"

// Compile-time interface verification.
var _ sdkdrift.EndpointExtractor = (*Extractor)(nil)

// Extractor finds async API methods in generated client sources.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns one descriptor per async method with a Promise return,
// in declaration order.
func (e *Extractor) Extract(path, text string) []sdkdrift.EndpointDescriptor {
	sigs := ScanAsyncMethods(text)
	if len(sigs) == 0 {
		return nil
	}
	out := make([]sdkdrift.EndpointDescriptor, 0, len(sigs))
	for _, s := range sigs {
		out = append(out, sdkdrift.EndpointDescriptor{
			Name:       s.Name,
			File:       path,
			Kind:       sdkdrift.EndpointKindAPIMethod,
			ReturnType: s.ReturnType,
			Line:       s.Line,
		})
	}
	return out
}
