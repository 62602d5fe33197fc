package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/compozy/subsync/internal/domain"
	"github.com/compozy/subsync/internal/repository"
	"github.com/dustin/go-humanize"
)

const (
	titleNoRemote       = "No remote"
	descNeedPublish     = "Need to publish first"
	descNeverFetched    = "Never fetched"
	lastFetchedTemplate = "Last fetched %s"
)

// SelectSyncActionUseCase reads the branch state and resolves the sync action.
type SelectSyncActionUseCase struct {
	GitRepo repository.GitRepository
	Now     func() time.Time
}

// Execute runs the use case.
func (uc *SelectSyncActionUseCase) Execute(
	ctx context.Context,
	networkActionInProgress bool,
) (domain.BranchState, domain.SyncDecision, error) {
	state, err := uc.GitRepo.BranchState(ctx)
	if err != nil {
		return domain.BranchState{}, domain.SyncDecision{}, fmt.Errorf("failed to read branch state: %w", err)
	}
	lastFetched, err := uc.GitRepo.LastFetched(ctx)
	if err != nil {
		return state, domain.SyncDecision{}, fmt.Errorf("failed to read last fetch time: %w", err)
	}
	now := time.Now
	if uc.Now != nil {
		now = uc.Now
	}
	return state, DecideSyncAction(state, networkActionInProgress, lastFetched, now()), nil
}

// DecideSyncAction resolves what the sync action does for the given state.
//
// Without a remote or an upstream the action is disabled until the branch is
// published. Otherwise it pulls when the branch is behind and fetches in every
// other case, whatever the ahead count.
func DecideSyncAction(
	state domain.BranchState,
	networkActionInProgress bool,
	lastFetched *time.Time,
	now time.Time,
) domain.SyncDecision {
	// With a remote the tip must be valid. Without one the branch counts as
	// unpublished and publishing takes care of the tip.
	validState := state.RemoteName == "" || state.Tip == domain.TipStateValid
	if !state.IsPublished() {
		return domain.SyncDecision{
			Action:      domain.SyncActionDisabled,
			Enabled:     false,
			Title:       titleNoRemote,
			Description: descNeedPublish,
		}
	}
	decision := domain.SyncDecision{
		Action:      domain.SyncActionFetch,
		Enabled:     validState && !networkActionInProgress,
		Title:       "Fetch " + state.RemoteName,
		Description: descNeverFetched,
	}
	if state.AheadBehind.Behind > 0 {
		decision.Action = domain.SyncActionPull
		decision.Title = "Pull " + state.RemoteName
	}
	if lastFetched != nil {
		decision.Description = fmt.Sprintf(lastFetchedTemplate, humanize.RelTime(*lastFetched, now, "ago", "from now"))
	}
	return decision
}
