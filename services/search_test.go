package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scientify/models"
)

var day0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func at(days int) time.Time { return day0.AddDate(0, 0, days) }

func titles(pubs []models.Publication) []string {
	out := make([]string, len(pubs))
	for i, p := range pubs {
		out[i] = p.Title
	}
	return out
}

func TestParseOrder(t *testing.T) {
	assert.Equal(t, OrderDateAsc, ParseOrder("date_asc"))
	assert.Equal(t, OrderTitleDesc, ParseOrder(" TITLE_DESC "))
	assert.Equal(t, OrderDateDesc, ParseOrder(""))
	assert.Equal(t, OrderDateDesc, ParseOrder("popularity"))
}

func TestSearch_TiersMergeThenResort(t *testing.T) {
	db := newTestDB(t)
	owner := uuid.New()
	// Tier 1 über Keyword, Tier 2 über Autor, Tier 3 über Titel; das neueste Dokument ist ein Titeltreffer.
	seed(t, db, owner, "Keyword Match", at(1), []string{"Someone"}, []string{"graph"})
	seed(t, db, owner, "Telephony", at(2), []string{"Graham Bell"}, []string{"audio"})
	seed(t, db, owner, "Author Match", at(3), []string{"Anna Graphwell"}, []string{"misc"})
	seed(t, db, owner, "Graph Theory Basics", at(4), []string{"Nobody"}, []string{"math"})
	seed(t, db, owner, "Unrelated", at(5), []string{"X"}, []string{"y"})

	s := NewSearchService(db, zap.NewNop())

	got, err := s.Search(context.Background(), "graph", OrderDateDesc)
	require.NoError(t, err)
	assert.Equal(t, []string{"Graph Theory Basics", "Author Match", "Keyword Match"}, titles(got))

	got, err = s.Search(context.Background(), "graph", OrderDateAsc)
	require.NoError(t, err)
	assert.Equal(t, []string{"Keyword Match", "Author Match", "Graph Theory Basics"}, titles(got))

	got, err = s.Search(context.Background(), "Graph", OrderTitleAsc)
	require.NoError(t, err)
	assert.Equal(t, []string{"Author Match", "Graph Theory Basics", "Keyword Match"}, titles(got))

	// Relationen werden mitgeliefert, der Dateiinhalt nicht.
	for _, p := range got {
		assert.NotEmpty(t, p.Authors)
		assert.NotEmpty(t, p.Keywords)
		assert.Empty(t, p.File)
	}
}

func TestSearch_PublicationMatchingSeveralTiersAppearsOnce(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, uuid.New(), "Graph Everything", at(1), []string{"Graph Master"}, []string{"graph"})

	got, err := NewSearchService(db, zap.NewNop()).Search(context.Background(), "graph", OrderDateDesc)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSearch_KeywordTokensAreANDed(t *testing.T) {
	db := newTestDB(t)
	owner := uuid.New()
	seed(t, db, owner, "Both", at(1), []string{"A"}, []string{"neural", "networks"})
	seed(t, db, owner, "Only Neural", at(2), []string{"B"}, []string{"neural"})
	seed(t, db, owner, "Only Network", at(3), []string{"C"}, []string{"network"})
	seed(t, db, owner, "A Neural Network Primer", at(4), []string{"D"}, []string{"intro"})

	got, err := NewSearchService(db, zap.NewNop()).Search(context.Background(), "Neural Network", OrderDateAsc)
	require.NoError(t, err)

	// "Both" über Keywords, der Primer über den vollständigen Suchtext im Titel.
	assert.Equal(t, []string{"Both", "A Neural Network Primer"}, titles(got))
}

func TestSearch_WildcardsMatchLiterally(t *testing.T) {
	db := newTestDB(t)
	owner := uuid.New()
	seed(t, db, owner, "Plain title", at(1), []string{"A"}, []string{"kw"})
	seed(t, db, owner, "100% coverage", at(2), []string{"B"}, []string{"kw"})

	s := NewSearchService(db, zap.NewNop())
	for query, want := range map[string][]string{
		"%":    {"100% coverage"},
		"_":    {},
		"100%": {"100% coverage"},
	} {
		got, err := s.Search(context.Background(), query, OrderDateAsc)
		require.NoError(t, err)
		assert.Equal(t, want, titles(got), query)
	}
}

func TestSearch_NoQueryReturnsAllOrdered(t *testing.T) {
	db := newTestDB(t)
	owner := uuid.New()
	seed(t, db, owner, "beta", at(1), nil, nil)
	seed(t, db, owner, "Alpha", at(2), nil, nil)
	seed(t, db, owner, "gamma", at(3), nil, nil)

	s := NewSearchService(db, zap.NewNop())
	cases := map[Order][]string{
		OrderDateDesc:  {"gamma", "Alpha", "beta"},
		OrderDateAsc:   {"beta", "Alpha", "gamma"},
		OrderTitleAsc:  {"Alpha", "beta", "gamma"},
		OrderTitleDesc: {"gamma", "beta", "Alpha"},
	}
	for order, want := range cases {
		got, err := s.Search(context.Background(), "   ", order)
		require.NoError(t, err)
		assert.Equal(t, want, titles(got), order)
	}
}

func TestSortPublications_TiesBreakOnID(t *testing.T) {
	pubs := []models.Publication{
		{ID: 1, Title: "same", UploadDate: day0},
		{ID: 2, Title: "Same", UploadDate: day0},
		{ID: 3, Title: "earlier", UploadDate: at(-1)},
	}
	ids := func() []uint { return []uint{pubs[0].ID, pubs[1].ID, pubs[2].ID} }

	SortPublications(pubs, OrderTitleAsc)
	assert.Equal(t, []uint{3, 1, 2}, ids())

	SortPublications(pubs, OrderTitleDesc)
	assert.Equal(t, []uint{2, 1, 3}, ids())

	SortPublications(pubs, OrderDateDesc)
	assert.Equal(t, []uint{2, 1, 3}, ids())

	SortPublications(pubs, OrderDateAsc)
	assert.Equal(t, []uint{3, 1, 2}, ids())
}

func TestSearch_NonASCIIIsCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	owner := uuid.New()
	seed(t, db, owner, "Germinal", at(1), []string{"Émile Zola"}, []string{"novel"})
	seed(t, db, owner, "Über Graphen", at(2), []string{"Kurt Gödel"}, []string{"logik"})
	seed(t, db, owner, "Unrelated", at(3), []string{"X"}, []string{"y"})

	s := NewSearchService(db, zap.NewNop())
	for query, want := range map[string][]string{
		"Émile": {"Germinal"},
		"émile": {"Germinal"},
		"ZOLA":  {"Germinal"},
		"über":  {"Über Graphen"},
		"ÜBER":  {"Über Graphen"},
		"GÖDEL": {"Über Graphen"},
		"Ärger": {},
	} {
		got, err := s.Search(context.Background(), query, OrderDateAsc)
		require.NoError(t, err)
		assert.Equal(t, want, titles(got), query)
	}
}

func TestSearch_QueryAndListingAgreeOnOrder(t *testing.T) {
	db := newTestDB(t)
	owner := uuid.New()
	// Gleiche Zeitstempel und gleiche Titel bis auf Groß-/Kleinschreibung erzwingen den ID-Tiebreak.
	seed(t, db, owner, "Paper", day0, []string{"A"}, []string{"kw"})
	seed(t, db, owner, "paper", day0, []string{"B"}, []string{"kw"})
	seed(t, db, owner, "Ärzte und Papier", at(1), []string{"C"}, []string{"kw"})

	s := NewSearchService(db, zap.NewNop())
	for _, order := range []Order{OrderDateAsc, OrderDateDesc, OrderTitleAsc, OrderTitleDesc} {
		all, err := s.Search(context.Background(), "", order)
		require.NoError(t, err)
		found, err := s.Search(context.Background(), "kw", order)
		require.NoError(t, err)
		assert.Equal(t, titles(all), titles(found), order)
	}
}
