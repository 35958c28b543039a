// Package mock provides test doubles for sdkdrift interfaces.
package mock

import (
	"io"

	"github.com/fwojciec/sdkdrift"
)

// Compile-time interface verification.
var (
	_ sdkdrift.DiffParser        = (*DiffParser)(nil)
	_ sdkdrift.EndpointExtractor = (*EndpointExtractor)(nil)
	_ sdkdrift.ImportAnalyzer    = (*ImportAnalyzer)(nil)
	_ sdkdrift.SourceNormalizer  = (*SourceNormalizer)(nil)
)

// DiffParser is a mock implementation of sdkdrift.DiffParser.
type DiffParser struct {
	ParseFn func(r io.Reader) (*sdkdrift.ParsedDiff, error)
}

func (p *DiffParser) Parse(r io.Reader) (*sdkdrift.ParsedDiff, error) {
	return p.ParseFn(r)
}

// EndpointExtractor is a mock implementation of sdkdrift.EndpointExtractor.
type EndpointExtractor struct {
	ExtractFn func(path, text string) []sdkdrift.EndpointDescriptor
}

func (e *EndpointExtractor) Extract(path, text string) []sdkdrift.EndpointDescriptor {
	return e.ExtractFn(path, text)
}

// ImportAnalyzer is a mock implementation of sdkdrift.ImportAnalyzer.
type ImportAnalyzer struct {
	AnalyzeFn func(path, text string) sdkdrift.WrapperFileProfile
}

func (a *ImportAnalyzer) Analyze(path, text string) sdkdrift.WrapperFileProfile {
	return a.AnalyzeFn(path, text)
}

// SourceNormalizer is a mock implementation of sdkdrift.SourceNormalizer.
type SourceNormalizer struct {
	NormalizeFn func(path, text string) string
}

func (n *SourceNormalizer) Normalize(path, text string) string {
	return n.NormalizeFn(path, text)
}
