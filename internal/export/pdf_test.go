package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	rscpdf "rsc.io/pdf"

	"github.com/becalab/becamap/internal/models"
)

// pdfText parses the generated document back and concatenates every text
// run, so tests can assert on what actually got laid out.
func pdfText(t *testing.T, data []byte) string {
	t.Helper()

	reader, err := rscpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		for _, text := range reader.Page(pageNum).Content().Text {
			sb.WriteString(text.S)
		}
	}
	return sb.String()
}

func TestPDFContainsSortedRecords(t *testing.T) {
	result, err := Serialize(sampleRecords(), FormatPDF, "")
	require.NoError(t, err)

	text := pdfText(t, result.Data)

	de := strings.Index(text, "DE-01")
	nl := strings.Index(text, "NL-01")
	pe := strings.Index(text, "PE-01")
	require.True(t, de >= 0 && nl >= 0 && pe >= 0, "all ids must appear")
	assert.True(t, de < nl && nl < pe, "records must be laid out in id order")

	assert.Contains(t, text, "Amsterdam Excellence Scholarship")
	assert.Contains(t, text, "TRUE")
	assert.Contains(t, text, "-----")
}

func TestPDFSkipsEmptyAndSentinelValues(t *testing.T) {
	records := []models.Scholarship{{
		ID:      "XX-01",
		Name:    "Beca escasa",
		Career:  "null",
		Area:    "undefined",
		Country: "Chile",
	}}

	result, err := Serialize(records, FormatPDF, "")
	require.NoError(t, err)

	text := pdfText(t, result.Data)
	assert.Contains(t, text, "XX-01")
	assert.Contains(t, text, "Chile")
	assert.NotContains(t, text, "CARRERA")
	assert.NotContains(t, text, "null")
	assert.NotContains(t, text, "undefined")
}

func TestPDFPaginatesLongBatches(t *testing.T) {
	var records []models.Scholarship
	long := strings.Repeat("requisito detallado ", 30)
	for i := 0; i < 40; i++ {
		records = append(records, models.Scholarship{
			ID:           "US-" + string(rune('A'+i%26)) + string(rune('A'+i/26)),
			Name:         "Fellowship",
			Country:      "Estados Unidos",
			Requirements: long,
		})
	}

	result, err := Serialize(records, FormatPDF, "")
	require.NoError(t, err)

	reader, err := rscpdf.NewReader(bytes.NewReader(result.Data), int64(len(result.Data)))
	require.NoError(t, err)
	assert.Greater(t, reader.NumPage(), 1)
}
