package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "certus/pkg/domain-errors"
)

func TestCatalogGet(t *testing.T) {
	catalog := NewCatalog(DefaultFrameworks())

	f, err := catalog.Get("iso27001")
	require.NoError(t, err)
	assert.Equal(t, "ISO/IEC 27001:2022", f.Name)
	assert.NotEmpty(t, f.Requirements)

	_, err = catalog.Get("nist-csf")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeFrameworkNotFound))
}

func TestCatalogListPreservesSeedOrder(t *testing.T) {
	catalog := NewCatalog(DefaultFrameworks())

	ids := make([]string, 0)
	for _, f := range catalog.List() {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"iso27001", "sox", "gdpr", "hipaa", "pcidss"}, ids)
}

func TestCatalogIgnoresDuplicateIDs(t *testing.T) {
	catalog := NewCatalog([]ComplianceFramework{
		{ID: "dup", Name: "first"},
		{ID: "dup", Name: "second"},
	})

	f, err := catalog.Get("dup")
	require.NoError(t, err)
	assert.Equal(t, "first", f.Name)
	assert.Len(t, catalog.List(), 1)
}

func TestRiskLevelOrdering(t *testing.T) {
	assert.True(t, RiskCritical.AtLeast(RiskHigh))
	assert.True(t, RiskHigh.AtLeast(RiskHigh))
	assert.False(t, RiskMedium.AtLeast(RiskHigh))
	assert.Equal(t, -1, RiskLevel("bogus").Rank())
}

func TestMaxRiskLevel(t *testing.T) {
	assert.Equal(t, RiskLow, MaxRiskLevel(nil))
	assert.Equal(t, RiskCritical, MaxRiskLevel([]RiskLevel{RiskLow, RiskCritical, RiskMedium}))
	assert.Equal(t, RiskMedium, MaxRiskLevel([]RiskLevel{RiskMedium, RiskLow}))
}
