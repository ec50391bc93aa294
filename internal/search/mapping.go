package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for post documents.
//
// Priorities:
//  1. Full-text search on post text with English stemming
//  2. Exact keyword matching on hashtags for filtering and faceting
//  3. Exact matching on the author key so a profile's posts are findable
//  4. Recency sorting on created_at
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// Post text - primary search target.
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = en.AnalyzerName
	textFieldMapping.Store = true
	textFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("text", textFieldMapping)

	// ID - stored but not analyzed.
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// Author key - exact match only; digests must never be stemmed.
	authorFieldMapping := bleve.NewTextFieldMapping()
	authorFieldMapping.Analyzer = keyword.Name
	authorFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("author_key", authorFieldMapping)

	// Hashtags - keyword analyzer keeps tags intact for filters/facets.
	hashtagsFieldMapping := bleve.NewTextFieldMapping()
	hashtagsFieldMapping.Analyzer = keyword.Name
	hashtagsFieldMapping.Store = true
	hashtagsFieldMapping.IncludeTermVectors = true // For faceting
	docMapping.AddFieldMappingsAt("hashtags", hashtagsFieldMapping)

	// Timestamp - for sorting by recency.
	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
