package services

import (
	"context"
	"testing"

	"github.com/jjudge-oj/glossary/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unknownID = "6f1c9a52-0000-4000-8000-000000000000"

func TestCreateTermResolvesCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tech, err := f.categories.Create(ctx, "", CategoryInput{Name: "Tech"})
	require.NoError(t, err)

	term, err := f.terms.Create(ctx, "admin-1", TermInput{
		Word:       "API",
		Definition: "Application Programming Interface",
		Category:   tech.ID,
		Examples:   []string{"REST API", "  "},
	})
	require.NoError(t, err)
	require.NotNil(t, term.Category)
	assert.Equal(t, "Tech", term.Category.Name)
	assert.Equal(t, []string{"REST API"}, term.Examples)
	require.NotNil(t, term.AddedBy)
	assert.Equal(t, "admin-1", *term.AddedBy)

	terms, err := f.terms.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, "Tech", terms[0].Category.Name)
}

func TestCreateTermUnknownCategoryCreatesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.terms.Create(ctx, "", TermInput{Word: "API", Definition: "def", Category: unknownID})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	_, err = f.terms.Create(ctx, "", TermInput{Word: "API", Definition: "def", Category: "not-an-id"})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	terms, err := f.terms.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, terms)
	assert.Empty(t, f.publisher.types())
}

func TestCreateTermRequiresWordAndDefinition(t *testing.T) {
	f := newFixture(t)

	_, err := f.terms.Create(context.Background(), "", TermInput{Word: "API"})
	requireInvalid(t, err)
}

func TestCreateTermValidatesRelatedTerms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sdk, err := f.terms.Create(ctx, "", TermInput{Word: "SDK", Definition: "kit"})
	require.NoError(t, err)

	_, err = f.terms.Create(ctx, "", TermInput{Word: "API", Definition: "def", RelatedTerms: []string{sdk.ID, unknownID}})
	assert.ErrorIs(t, err, ErrRelatedTermNotFound)

	api, err := f.terms.Create(ctx, "", TermInput{Word: "API", Definition: "def", RelatedTerms: []string{sdk.ID, sdk.ID}})
	require.NoError(t, err)
	require.Len(t, api.RelatedTerms, 1)
	assert.Equal(t, "SDK", api.RelatedTerms[0].Word)

	related, err := f.terms.Related(ctx, api.ID)
	require.NoError(t, err)
	assert.Equal(t, api.RelatedTerms, related)
}

func TestUpdateTermAppliesPatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tech, err := f.categories.Create(ctx, "", CategoryInput{Name: "Tech"})
	require.NoError(t, err)
	sdk, err := f.terms.Create(ctx, "", TermInput{Word: "SDK", Definition: "kit"})
	require.NoError(t, err)
	api, err := f.terms.Create(ctx, "", TermInput{
		Word:         "API",
		Definition:   "def",
		Category:     tech.ID,
		Examples:     []string{"one"},
		RelatedTerms: []string{sdk.ID},
	})
	require.NoError(t, err)

	definition := "Application Programming Interface"
	updated, err := f.terms.Update(ctx, "", api.ID, TermPatch{Definition: &definition})
	require.NoError(t, err)
	assert.Equal(t, "API", updated.Word)
	assert.Equal(t, definition, updated.Definition)
	assert.Equal(t, "Tech", updated.Category.Name)
	assert.Equal(t, []string{"one"}, updated.Examples)
	assert.Len(t, updated.RelatedTerms, 1)

	uncategorized := ""
	none := []string{}
	updated, err = f.terms.Update(ctx, "", api.ID, TermPatch{Category: &uncategorized, RelatedTerms: &none})
	require.NoError(t, err)
	assert.Nil(t, updated.Category)
	assert.Empty(t, updated.RelatedTerms)

	self := []string{api.ID}
	_, err = f.terms.Update(ctx, "", api.ID, TermPatch{RelatedTerms: &self})
	requireInvalid(t, err)

	_, err = f.terms.Update(ctx, "", unknownID, TermPatch{Definition: &definition})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteCategoryLeavesTermUncategorized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tech, err := f.categories.Create(ctx, "", CategoryInput{Name: "Tech"})
	require.NoError(t, err)
	api, err := f.terms.Create(ctx, "", TermInput{Word: "API", Definition: "def", Category: tech.ID})
	require.NoError(t, err)

	require.NoError(t, f.categories.Delete(ctx, "", tech.ID))

	term, err := f.terms.Get(ctx, api.ID)
	require.NoError(t, err)
	assert.Nil(t, term.Category)

	terms, err := f.terms.ListByCategory(ctx, tech.ID)
	require.NoError(t, err)
	assert.Empty(t, terms)
}

func TestTermSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.terms.Create(ctx, "", TermInput{Word: "API", Definition: "Application Programming Interface"})
	require.NoError(t, err)
	_, err = f.terms.Create(ctx, "", TermInput{Word: "Latency", Definition: "delay before transfer"})
	require.NoError(t, err)

	matched, err := f.terms.List(ctx, "programming")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "API", matched[0].Word)
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errBroker

	term, err := f.terms.Create(context.Background(), "", TermInput{Word: "API", Definition: "def"})
	require.NoError(t, err)
	assert.NotEmpty(t, term.ID)
}
