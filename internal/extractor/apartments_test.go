package extractor

import (
	"testing"

	"monitor-apartamentos/internal/models"

	"github.com/stretchr/testify/require"
)

const pricingPage = `<html><body>
<div id="pricingView">
  <div data-tab-content-id="bed1">
    <div class="pricingGridItem">
      <div class="priceBedRangeInfo"><span class="modelName">1BR Deluxe</span></div>
      <div class="unitContainer">
        <span class="screenReaderOnly">Unidade</span>
        <span class="unitColumn">204</span>
        <span class="pricingColumn"><span class="screenReaderOnly">preço</span>$1,500</span>
        <span class="sqftColumn">700</span>
        <span class="availableColumn">Now</span>
      </div>
      <div class="unitContainer">
        <span class="unitColumn">206</span>
        <span class="pricingColumn">$1,650</span>
        <span class="sqftColumn">1,015</span>
        <span class="availableColumn">Feb 1</span>
      </div>
    </div>
    <div class="pricingGridItem">
      <div class="priceBedRangeInfo"><span class="modelName">1BR Standard</span></div>
      <div class="unitContainer">
        <span class="unitColumn">101</span>
        <span class="pricingColumn">$1,300</span>
        <span class="sqftColumn">650</span>
        <span class="availableColumn">Now</span>
      </div>
    </div>
  </div>
</div>
</body></html>`

func dump(url, body string) models.Dump {
	return models.Dump{URL: url, Timestamp: 100, Status: 200, Body: body}
}

func TestApartmentsExtract(t *testing.T) {
	e := NewApartmentsExtractor()

	units, err := e.Extract(dump("https://www.apartments.com/maple", pricingPage))
	require.NoError(t, err)

	require.Equal(t, []models.UnitRecord{
		{Model: "1BR Deluxe", Unit: "204", Price: 1500, Sqft: 700, Available: "Now"},
		{Model: "1BR Deluxe", Unit: "206", Price: 1650, Sqft: 1015, Available: "Feb 1"},
		{Model: "1BR Standard", Unit: "101", Price: 1300, Sqft: 650, Available: "Now"},
	}, units)
}

func TestApartmentsExtractEmptyPage(t *testing.T) {
	e := NewApartmentsExtractor()

	units, err := e.Extract(dump("https://www.apartments.com/maple", "<html><body></body></html>"))
	require.NoError(t, err)
	require.Empty(t, units)
}

func TestApartmentsExtractBadPrice(t *testing.T) {
	page := `<div id="pricingView"><div data-tab-content-id="bed1">
	<div class="pricingGridItem">
	  <div class="priceBedRangeInfo"><span class="modelName">1BR</span></div>
	  <div class="unitContainer">
	    <span class="unitColumn">204</span>
	    <span class="pricingColumn">Call for Rent</span>
	    <span class="sqftColumn">700</span>
	    <span class="availableColumn">Now</span>
	  </div>
	</div>
	</div></div>`

	e := NewApartmentsExtractor()
	_, err := e.Extract(dump("https://www.apartments.com/maple", page))
	require.Error(t, err)
}

func TestRegistryUnsupportedSource(t *testing.T) {
	r := NewRegistry()

	require.Nil(t, r.FindExtractor("https://example.org/listing"))

	units, err := r.Extract(dump("https://example.org/listing", pricingPage))
	require.NoError(t, err)
	require.Nil(t, units)
}

func TestRegistryFindsApartments(t *testing.T) {
	r := NewRegistry()
	e := r.FindExtractor("https://www.apartments.com/maple-apartments/abcd123")
	require.NotNil(t, e)
	require.IsType(t, &ApartmentsExtractor{}, e)
}
