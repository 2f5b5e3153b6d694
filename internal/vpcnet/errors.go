package vpcnet

import (
	"strings"

	"github.com/aws/smithy-go"
	"github.com/cockroachdb/errors"
)

func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// isNotFound reports whether err is EC2 telling us the resource is already
// gone. Teardown treats these as success so re-runs are idempotent.
func isNotFound(err error) bool {
	code := apiErrorCode(err)
	return strings.HasSuffix(code, ".NotFound") || code == "NatGatewayNotFound"
}

// isDuplicate reports whether err means the group or rule already exists,
// which happens when provisioning is re-run against a half-built network.
func isDuplicate(err error) bool {
	code := apiErrorCode(err)
	return code == "InvalidGroup.Duplicate" || code == "InvalidPermission.Duplicate"
}
