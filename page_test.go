package main

import (
	"testing"

	"github.com/matst80/slask-refine/pkg/storage"
	"github.com/matst80/slask-refine/pkg/view"
	"github.com/matst80/slask-refine/pkg/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFacets(t *testing.T) {
	facets, err := parseFacets("brand:or, type:and,,color")
	require.NoError(t, err)
	assert.Equal(t, []storage.FacetSetting{
		{Name: "brand", Operator: "or"},
		{Name: "type", Operator: "and"},
		{Name: "color"},
	}, facets)

	_, err = parseFacets(":and")
	assert.Error(t, err)
}

func TestRefinementPage(t *testing.T) {
	doc := view.NewDocument()
	widgets, err := refinementPage([]storage.FacetSetting{
		{Name: "brand", Title: "<Brand>"},
		{Name: "type", Operator: "and"},
	})(doc)
	require.NoError(t, err)
	assert.Len(t, widgets, 2)
	assert.Len(t, doc.Containers(), 2)

	out, err := titleTemplate("<Brand>").Execute(nil, nil, true)
	require.NoError(t, err)
	assert.Equal(t, "<h3>&lt;Brand&gt;</h3>", string(out))

	_, err = refinementPage([]storage.FacetSetting{{Name: "brand", Operator: "xor"}})(view.NewDocument())
	var usage *widget.UsageError
	assert.ErrorAs(t, err, &usage)
}
