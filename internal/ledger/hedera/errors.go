package hedera

import (
	"errors"

	hsdk "github.com/hashgraph/hedera-sdk-go/v2"

	dErrors "truetrace/pkg/domain-errors"
)

// StatusOf extracts the network status carried by a precheck or receipt
// error.
func StatusOf(err error) (hsdk.Status, bool) {
	var receipt hsdk.ErrHederaReceiptStatus
	if errors.As(err, &receipt) {
		return receipt.Status, true
	}
	var precheck hsdk.ErrHederaPreCheckStatus
	if errors.As(err, &precheck) {
		return precheck.Status, true
	}
	return 0, false
}

// IsAlreadyAssociated reports TOKEN_ALREADY_ASSOCIATED_TO_ACCOUNT.
func IsAlreadyAssociated(err error) bool {
	status, ok := StatusOf(err)
	return ok && status == hsdk.StatusTokenAlreadyAssociatedToAccount
}

// MapError classifies an SDK error. A network status means the transaction
// was rejected and becomes SubmissionFailed with the status text; anything
// else is a transport failure.
func MapError(err error, op string) error {
	if err == nil {
		return nil
	}
	if status, ok := StatusOf(err); ok {
		return dErrors.Wrap(err, dErrors.CodeSubmissionFailed, op+": "+status.String())
	}
	return dErrors.Wrap(err, dErrors.CodeCollaboratorUnavailable, op+" failed")
}
