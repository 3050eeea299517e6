package category

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lif2/checkov/pkg/checktype"
)

func TestForCheckType(t *testing.T) {
	assert.Equal(t, IaC, ForCheckType(checktype.Terraform))
	assert.Equal(t, IaC, ForCheckType(checktype.Helm))
	assert.Equal(t, OpenSource, ForCheckType(checktype.ScaPackage))
	assert.Equal(t, Images, ForCheckType(checktype.ScaImage))
	assert.Equal(t, Secrets, ForCheckType(checktype.Secrets))
	assert.Equal(t, SupplyChain, ForCheckType(checktype.GithubActions))
}

func TestForCheckTypeUncategorized(t *testing.T) {
	assert.Equal(t, None, ForCheckType(checktype.BitbucketConfiguration))
	assert.Equal(t, None, ForCheckType(checktype.CheckType("no-such-framework")))
}

func TestAllContainsOnlyConfigurableCategories(t *testing.T) {
	assert.Len(t, All, 5)
	assert.NotContains(t, All, None)
}
