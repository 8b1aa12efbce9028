package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBib = `@article{lovelace2021,
  title = {Notes on the Analytical Engine},
  author = {Lovelace, Ada and Babbage, Charles},
  journal = {Annals of Computing},
  year = 2021,
  doi = {10.1000/xyz123}
}

@book{second,
  title = {Ignored}
}`

func TestValidDOI(t *testing.T) {
	cases := map[string]bool{
		"10.1000/abc":              true,
		"10.1038/nphys1170":        true,
		"10.1234/ABC-def_(1):x[2]": true,
		"10.1/abc":                 false,
		"abc/123":                  false,
		"10.12345/":                false,
		"10.1000/has space":        false,
	}
	for doi, want := range cases {
		assert.Equal(t, want, ValidDOI(doi), doi)
	}
}

func TestResolveMetadata_ManualMissingFieldsAggregated(t *testing.T) {
	_, err := ResolveMetadata(MetadataInput{Authors: " , "})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"title", "authors", "year", "journal"}, vErr.Problems)
}

func TestResolveMetadata_Manual(t *testing.T) {
	md, err := ResolveMetadata(MetadataInput{Title: " T ", Authors: "A, B", Year: "1999", Journal: "J", DOI: "10.1000/abc"})
	require.NoError(t, err)

	assert.Equal(t, SourceManual, md.Source)
	assert.Equal(t, "T", md.Title)
	assert.Equal(t, 1999, md.Year)
	assert.Equal(t, "10.1000/abc", md.DOI)
	assert.Nil(t, md.Record)
}

func TestResolveMetadata_BibTeXWithOverrides(t *testing.T) {
	md, err := ResolveMetadata(MetadataInput{BibTeX: []byte(sampleBib), Title: "User Title"})
	require.NoError(t, err)

	assert.Equal(t, SourceBibTeX, md.Source)
	assert.Equal(t, "User Title", md.Title)
	assert.Equal(t, "Ada Lovelace, Charles Babbage", md.Authors)
	assert.Equal(t, "Annals of Computing", md.Journal)
	assert.Equal(t, 2021, md.Year)
	assert.Equal(t, "10.1000/xyz123", md.DOI)

	require.NotNil(t, md.Record)
	assert.Equal(t, "Notes on the Analytical Engine", md.Record.Title)
	require.NotNil(t, md.Record.Year)
	assert.Equal(t, 2021, *md.Record.Year)
}

func TestResolveMetadata_BibTeXMissingAfterMerge(t *testing.T) {
	bib := `@misc{x, title = {Only a title}, year = {2020}}`

	_, err := ResolveMetadata(MetadataInput{BibTeX: []byte(bib), Authors: "Someone"})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"journal"}, vErr.Problems)
}

func TestResolveMetadata_InvalidInputs(t *testing.T) {
	cases := map[string]MetadataInput{
		"doi":        {Title: "T", Authors: "A", Year: "2000", Journal: "J", DOI: "10.1/abc"},
		"year":       {Title: "T", Authors: "A", Year: "MMXX", Journal: "J"},
		"empty bib":  {BibTeX: []byte("no entries in here")},
		"bib year":   {BibTeX: []byte(`@article{x, year = {soon}}`)},
		"bib syntax": {BibTeX: []byte(`@article{x, title = {unterminated`)},
	}
	for name, in := range cases {
		_, err := ResolveMetadata(in)
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr, name)
	}
}

func TestBibAuthors(t *testing.T) {
	assert.Equal(t, "Ada Lovelace, Alan Turing", bibAuthors("Lovelace, Ada and Alan Turing"))
	assert.Equal(t, "", bibAuthors(""))
}

func TestSplitAuthors(t *testing.T) {
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, SplitAuthors(" Ada Lovelace ,, Alan Turing , "))
	assert.Empty(t, SplitAuthors(""))
}
