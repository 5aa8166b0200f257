package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

const (
	fieldISBN   = "isbn"
	fieldTitle  = "title"
	fieldAuthor = "author"
)

// buildIndexMapping maps titles with English stemming, so "tales" finds
// "Fairy tales", and authors with the standard analyzer, so names are not
// stemmed.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	doc := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = en.AnalyzerName
	title.Store = true
	doc.AddFieldMappingsAt(fieldTitle, title)

	author := bleve.NewTextFieldMapping()
	author.Analyzer = standard.Name
	author.Store = true
	doc.AddFieldMappingsAt(fieldAuthor, author)

	isbn := bleve.NewTextFieldMapping()
	isbn.Analyzer = keyword.Name
	isbn.Store = true
	doc.AddFieldMappingsAt(fieldISBN, isbn)

	indexMapping.DefaultMapping = doc
	return indexMapping
}
