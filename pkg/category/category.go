// Package category maps scanner check types to the platform code categories
// used by enforcement rules.
package category

import "github.com/lif2/checkov/pkg/checktype"

type CodeCategory string

const (
	IaC         CodeCategory = "IAC"
	OpenSource  CodeCategory = "OPEN_SOURCE"
	Secrets     CodeCategory = "SECRETS"
	Images      CodeCategory = "IMAGES"
	SupplyChain CodeCategory = "SUPPLY_CHAIN"

	// None is the category of check types the platform has no
	// enforcement thresholds for.
	None CodeCategory = ""
)

// All is the closed set of categories an enforcement rule can configure.
var All = []CodeCategory{IaC, OpenSource, Secrets, Images, SupplyChain}

var byCheckType = map[checktype.CheckType]CodeCategory{
	checktype.Arm:                    IaC,
	checktype.Bicep:                  IaC,
	checktype.BitbucketConfiguration: None,
	checktype.BitbucketPipelines:     SupplyChain,
	checktype.Cloudformation:         IaC,
	checktype.Dockerfile:             IaC,
	checktype.GithubActions:          SupplyChain,
	checktype.GithubConfiguration:    SupplyChain,
	checktype.GitlabCI:               SupplyChain,
	checktype.GitlabConfiguration:    SupplyChain,
	checktype.Helm:                   IaC,
	checktype.JSON:                   IaC,
	checktype.Kubernetes:             IaC,
	checktype.Kustomize:              IaC,
	checktype.OpenAPI:                IaC,
	checktype.ScaImage:               Images,
	checktype.ScaPackage:             OpenSource,
	checktype.Secrets:                Secrets,
	checktype.Serverless:             IaC,
	checktype.Terraform:              IaC,
	checktype.TerraformPlan:          IaC,
	checktype.YAML:                   IaC,
}

// ForCheckType returns the code category for a check type, or None for
// check types the platform does not categorize.
func ForCheckType(ct checktype.CheckType) CodeCategory {
	return byCheckType[ct]
}
