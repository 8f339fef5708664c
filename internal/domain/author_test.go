package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthor_Name(t *testing.T) {
	a := &Author{FirstName: "Ursula", LastName: "Le Guin"}
	assert.Equal(t, "Le Guin, Ursula", a.Name())
	assert.Equal(t, "Ursula Le Guin", a.FullName())
	assert.Equal(t, "Plato", (&Author{FirstName: "Plato"}).Name())
}

func TestAuthor_LifespanValid(t *testing.T) {
	born := day("1929-10-21")
	died := day("2018-01-22")

	assert.True(t, (&Author{}).LifespanValid())
	assert.True(t, (&Author{DateOfBirth: &born, DateOfDeath: &died}).LifespanValid())
	assert.False(t, (&Author{DateOfBirth: &died, DateOfDeath: &born}).LifespanValid())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	assert.NoError(t, err)
	assert.Equal(t, "2024-02-29", FormatDate(&d))

	_, err = ParseDate("29/02/2024")
	assert.Error(t, err)

	assert.Equal(t, "", FormatDate(nil))
}
