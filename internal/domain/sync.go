package domain

// AheadBehind is the divergence between the local branch and its upstream.
// A nil *AheadBehind means the branch has no upstream.
type AheadBehind struct {
	Ahead  int `json:"ahead"`
	Behind int `json:"behind"`
}

// TipState describes what HEAD currently points at.
type TipState string

const (
	TipStateValid    TipState = "valid"
	TipStateUnborn   TipState = "unborn"
	TipStateDetached TipState = "detached"
)

// SyncAction is the network action the sync command resolves to.
type SyncAction string

const (
	SyncActionDisabled SyncAction = "disabled"
	SyncActionPull     SyncAction = "pull"
	SyncActionFetch    SyncAction = "fetch"
)

// BranchState is the input to the sync decision.
type BranchState struct {
	Branch      string       `json:"branch"`
	RemoteName  string       `json:"remote_name,omitempty"`
	AheadBehind *AheadBehind `json:"ahead_behind,omitempty"`
	Tip         TipState     `json:"tip"`
}

// IsPublished reports whether the branch has both a remote and an upstream.
func (s BranchState) IsPublished() bool {
	return s.RemoteName != "" && s.AheadBehind != nil
}

// SyncDecision is the resolved sync action together with what a front end
// should show for it.
type SyncDecision struct {
	Action      SyncAction `json:"action"`
	Enabled     bool       `json:"enabled"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
}
