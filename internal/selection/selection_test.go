package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawglot/lawglot-go/internal/errors"
)

func TestSelection_FullFlow(t *testing.T) {
	var s Selection
	assert.Equal(t, NoSelection, s.Phase)

	s, err := s.SelectDaily("D1")
	require.NoError(t, err)
	assert.Equal(t, DailySelected, s.Phase)
	assert.Equal(t, "D1", s.DailyTermID)

	s, err = s.SelectLegal("L1")
	require.NoError(t, err)
	assert.Equal(t, LegalSelected, s.Phase)
	assert.Equal(t, "D1", s.DailyTermID)
	assert.Equal(t, "L1", s.LegalTermID)
}

func TestSelection_LegalBeforeDaily(t *testing.T) {
	var s Selection
	_, err := s.SelectLegal("L1")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryState))
}

func TestSelection_ChangingDailyResetsLegal(t *testing.T) {
	var s Selection
	s, _ = s.SelectDaily("D1")
	s, _ = s.SelectLegal("L1")

	s, err := s.SelectDaily("D2")
	require.NoError(t, err)
	assert.Equal(t, DailySelected, s.Phase)
	assert.Equal(t, "D2", s.DailyTermID)
	assert.Empty(t, s.LegalTermID)
}

func TestSelection_EmptyIDs(t *testing.T) {
	var s Selection
	_, err := s.SelectDaily("")
	assert.True(t, errors.IsValidation(err))

	s, _ = s.SelectDaily("D1")
	_, err = s.SelectLegal("")
	assert.True(t, errors.IsValidation(err))
}

func TestSelection_Reset(t *testing.T) {
	var s Selection
	s, _ = s.SelectDaily("D1")
	s, _ = s.SelectLegal("L1")

	s = s.Reset()
	assert.Equal(t, Selection{}, s)
}
