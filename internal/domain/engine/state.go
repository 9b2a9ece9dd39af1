package engine

import (
	"fmt"
	"strings"
	"time"

	"academictoken/internal/errs"
)

const DefaultAutoApprovalThreshold = 85

var (
	ErrNotInitialized     = errs.New(errs.KindNotFound, "engine state not initialized")
	ErrAlreadyInitialized = errs.New(errs.KindAlreadyIssued, "engine state already initialized")
	ErrUnauthorized       = errs.New(errs.KindUnauthorized, "caller is not authorized")
	ErrCallerRequired     = errs.New(errs.KindUnauthorized, "caller identity is required")
	ErrOwnerRequired      = errs.New(errs.KindInvalidInput, "owner is required")
	ErrInvalidThreshold   = errs.New(errs.KindInvalidInput, "auto approval threshold must be within 0..100")
)

// State is the single configuration and counter aggregate. Operations load,
// modify and save it inside their own unit of work.
type State struct {
	Owner                 string
	Approvers             []string
	AutoApprovalThreshold int
	TotalEquivalences     int64
	TotalAnalyses         int64
	TotalVerifications    int64
	TotalTransfers        int64
	UpdatedAt             time.Time
}

func New(owner string, approvers []string, threshold int, now time.Time) (State, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return State{}, ErrOwnerRequired
	}
	if threshold < 0 || threshold > 100 {
		return State{}, ErrInvalidThreshold
	}
	return State{
		Owner:                 owner,
		Approvers:             normalize(approvers),
		AutoApprovalThreshold: threshold,
		UpdatedAt:             now,
	}, nil
}

func (s State) IsOwner(caller string) bool {
	return strings.TrimSpace(caller) != "" && caller == s.Owner
}

func (s State) IsApprover(caller string) bool {
	if s.IsOwner(caller) {
		return true
	}
	for _, a := range s.Approvers {
		if a == caller {
			return true
		}
	}
	return false
}

// RequireOwner fails unless caller owns the engine.
func (s State) RequireOwner(caller string) error {
	if strings.TrimSpace(caller) == "" {
		return ErrCallerRequired
	}
	if !s.IsOwner(caller) {
		return fmt.Errorf("%w: %s is not the owner", ErrUnauthorized, caller)
	}
	return nil
}

// RequireApprover fails unless caller is the owner or a listed approver.
func (s State) RequireApprover(caller string) error {
	if strings.TrimSpace(caller) == "" {
		return ErrCallerRequired
	}
	if !s.IsApprover(caller) {
		return fmt.Errorf("%w: %s is not an approver", ErrUnauthorized, caller)
	}
	return nil
}

// ConfigUpdate carries optional changes; nil fields are left as they are.
type ConfigUpdate struct {
	Owner                 *string
	Approvers             *[]string
	AutoApprovalThreshold *int
}

func (s *State) Apply(u ConfigUpdate, now time.Time) error {
	if u.AutoApprovalThreshold != nil {
		if t := *u.AutoApprovalThreshold; t < 0 || t > 100 {
			return ErrInvalidThreshold
		}
	}
	if u.Owner != nil && strings.TrimSpace(*u.Owner) == "" {
		return ErrOwnerRequired
	}

	if u.AutoApprovalThreshold != nil {
		s.AutoApprovalThreshold = *u.AutoApprovalThreshold
	}
	if u.Owner != nil {
		s.Owner = strings.TrimSpace(*u.Owner)
	}
	if u.Approvers != nil {
		s.Approvers = normalize(*u.Approvers)
	}
	s.UpdatedAt = now
	return nil
}

func normalize(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
