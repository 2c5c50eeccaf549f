package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vdp-support-service/internal/domain/models"
)

func TestNormalizeName_StripsHonorifics(t *testing.T) {
	cases := map[string]string{
		"Mr. John":        "john",
		"  Smt Devi ":     "devi",
		"smt. Lakshmi":    "lakshmi",
		"Shri. Ramesh":    "ramesh",
		"MRS Kapoor":      "kapoor",
		"Dr Anil Mehta":   "anil mehta",
		"Late Sh Gupta":   "sh gupta",
		"Shreya":          "shreya",
		"Dr.John":         "dr.john",
		"":                "",
		"Mr":              "mr",
		"ms   Priya Nair": "priya nair",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeName(in), in)
	}
}

func TestNormalizeName_Idempotent(t *testing.T) {
	roster := []string{"Mr. John", "  Smt Devi ", "ANIL", "Dr Meera Iyer", "Shri. Kumar", "Shree", ""}
	for _, name := range roster {
		once := NormalizeName(name)
		assert.Equal(t, once, NormalizeName(once), name)
	}
}

func TestMaskName(t *testing.T) {
	assert.Equal(t, "JONA...TH", MaskName("Jonathan", "Smith"))
	assert.Equal(t, "AL...LI", MaskName(" Al ", "Li"))
	assert.Equal(t, "RAVI...", MaskName("Ravi", ""))
	assert.Equal(t, "...", MaskName("", ""))
	assert.Equal(t, "ÉMIL...ÖM", MaskName("Émilie", "Ström"))
}

func TestMatchResident_CaseAndWhitespaceInsensitive(t *testing.T) {
	records := []models.ResidentRecord{
		{Building: "TOWER 11", FlatNo: "101", FirstName: "Eleven"},
		{Building: "TOWER 1", FlatNo: "101", FirstName: "First"},
		{Building: "Tower 1", FlatNo: "101", FirstName: "Duplicate"},
	}

	got, ok := MatchResident(records, " Tower 1 ", "101 ")
	require.True(t, ok)
	assert.Equal(t, "First", got.FirstName, "first match wins")
}

func TestMatchResident_NoFuzzyMatching(t *testing.T) {
	records := []models.ResidentRecord{{Building: "Tower 11", FlatNo: "101"}}

	_, ok := MatchResident(records, "Tower 1", "101")
	assert.False(t, ok)

	_, ok = MatchResident(records, "Tower 11", "10")
	assert.False(t, ok)

	_, ok = MatchResident(nil, "Tower 11", "101")
	assert.False(t, ok)
}

func TestFindResidentsByName(t *testing.T) {
	records := []models.ResidentRecord{
		{Building: "A", FlatNo: "1", FirstName: "Smt Devi", LastName: "Rao"},
		{Building: "B", FlatNo: "2", FirstName: "John", LastName: "Smith"},
	}
	found := FindResidentsByName(records, "devi rao")
	require.Len(t, found, 1)
	assert.Equal(t, "A", found[0].Building)

	assert.Len(t, FindResidentsByName(records, "Mr. John"), 1)
	assert.Empty(t, FindResidentsByName(records, ""))
}
