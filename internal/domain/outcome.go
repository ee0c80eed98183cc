package domain

// ClusterState is the terminal state of one cluster in a summarizer run.
type ClusterState string

const (
	StateSkipped   ClusterState = "skipped"
	StatePersisted ClusterState = "persisted"
	StateFailed    ClusterState = "failed"
)

// Cause classifies why a cluster was skipped or failed.
type Cause string

const (
	CauseNone          Cause = ""
	CauseNoise         Cause = "noise"
	CauseNoContent     Cause = "no_content"
	CauseInvokeError   Cause = "invoke_error"
	CauseEmptyResponse Cause = "empty_response"
	CauseParseError    Cause = "parse_error"
	CausePersistError  Cause = "persist_error"
)

// ClusterOutcome records what happened to one cluster.
type ClusterOutcome struct {
	ClusterID int64
	State     ClusterState
	Cause     Cause
	Members   int
	Summary   *Summary
	Err       error
}

// RowOutcome records what happened to one loader row.
type RowOutcome struct {
	Row    int
	URL    string
	Result UpsertResult
	Err    error
}

// Failed reports whether the row was rejected or could not be stored.
func (o RowOutcome) Failed() bool {
	return o.Err != nil
}
