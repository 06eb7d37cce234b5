package entities

import "encoding/json"

// CommitOutcome is the normalized result of a gateway commit, as applied to
// the transaction ledger. Approved decides authorized vs failed.
type CommitOutcome struct {
	ResponseCode       *int
	AuthorizationCode  string
	PaymentTypeCode    string
	InstallmentsNumber *int
	CardLastFour       string
	Raw                json.RawMessage
	Approved           bool
}
