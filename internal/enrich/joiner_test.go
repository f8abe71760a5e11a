package enrich

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/note-leads/internal/record"
)

func writeCSV(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadJoinerAndFind(t *testing.T) {
	path := writeCSV(t, "prop_clean.csv",
		"account_id,owner_name,situs_address,situs_city,situs_state,situs_zip,mailing_address,mailing_city,mailing_state,mailing_zip,total_value,property_type\n"+
			"000123,SMITH JOHN,123 MAIN ST,AUSTIN,TX,78701,PO BOX 9,DALLAS,TX,75201,250000,R1\n"+
			"456,DOE JANE,9 OAK AVE,AUSTIN,TX,78702,,,,,180000,R1\n")

	j, err := LoadJoiner(path)
	require.NoError(t, err)
	assert.Equal(t, 2, j.Len())

	// Leading zeros are insignificant in account ids.
	e, ok := j.Find("123")
	require.True(t, ok)
	assert.Equal(t, "SMITH JOHN", e.OwnerName)
	assert.Equal(t, "PO BOX 9", e.MailingAddress.Line1)

	_, ok = j.Find("00123")
	assert.True(t, ok)

	_, ok = j.Find("999")
	assert.False(t, ok)
}

func TestJoinerMissNeverBlocks(t *testing.T) {
	var j *Joiner // no secondary dataset loaded at all

	rec := &record.Record{ParcelID: "123", OwnerName: "SMITH, JOHN"}
	assert.False(t, j.Apply(rec))
	assert.Equal(t, "SMITH, JOHN", rec.OwnerName, "record passes through unchanged")

	_, ok := j.Find("123")
	assert.False(t, ok)
	assert.Zero(t, j.Len())
}

func TestJoinerApplyFillsOnlyMissing(t *testing.T) {
	path := writeCSV(t, "prop_clean.csv",
		"account_id,owner_name,situs_address,situs_city,situs_state,situs_zip,mailing_address,mailing_city,mailing_state,mailing_zip\n"+
			"123,TCAD OWNER,123 MAIN ST,AUSTIN,TX,78701,PO BOX 9,DALLAS,TX,75201\n")
	j, err := LoadJoiner(path)
	require.NoError(t, err)

	rec := &record.Record{ParcelID: "123", OwnerName: "EXISTING OWNER"}
	assert.True(t, j.Apply(rec))
	assert.Equal(t, "EXISTING OWNER", rec.OwnerName, "record values win")
	assert.Equal(t, "123 MAIN ST", rec.PropertyAddress.Line1, "missing fields are filled")
	assert.Equal(t, "PO BOX 9", rec.MailingAddress.Line1)
}

func TestLoadJoinerMissingFile(t *testing.T) {
	j, err := LoadJoiner(filepath.Join(t.TempDir(), "absent.csv"))
	require.NoError(t, err)
	assert.Nil(t, j)

	j, err = LoadJoiner("")
	require.NoError(t, err)
	assert.Nil(t, j)
}
