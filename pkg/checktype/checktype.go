// Package checktype enumerates the scanner frameworks known to the platform.
package checktype

type CheckType string

const (
	Arm                    CheckType = "arm"
	Bicep                  CheckType = "bicep"
	BitbucketConfiguration CheckType = "bitbucket_configuration"
	BitbucketPipelines     CheckType = "bitbucket_pipelines"
	Cloudformation         CheckType = "cloudformation"
	Dockerfile             CheckType = "dockerfile"
	GithubActions          CheckType = "github_actions"
	GithubConfiguration    CheckType = "github_configuration"
	GitlabCI               CheckType = "gitlab_ci"
	GitlabConfiguration    CheckType = "gitlab_configuration"
	Helm                   CheckType = "helm"
	JSON                   CheckType = "json"
	Kubernetes             CheckType = "kubernetes"
	Kustomize              CheckType = "kustomize"
	OpenAPI                CheckType = "openapi"
	Policy3D               CheckType = "policy_3d"
	ScaImage               CheckType = "sca_image"
	ScaPackage             CheckType = "sca_package"
	Secrets                CheckType = "secrets"
	Serverless             CheckType = "serverless"
	Terraform              CheckType = "terraform"
	TerraformPlan          CheckType = "terraform_plan"
	YAML                   CheckType = "yaml"
)

func (c CheckType) String() string {
	return string(c)
}
