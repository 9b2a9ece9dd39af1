package academic

import (
	"context"
	"fmt"
	"strings"

	"academictoken/internal/domain/engine"
	"academictoken/internal/errs"
)

var errNoConfigChange = errs.New(errs.KindInvalidInput, "no configuration change requested")

// InitEngine creates the engine state. It fails once the state exists.
func (s *Service) InitEngine(ctx context.Context, input InitEngineInput) (_ engine.State, err error) {
	if err := s.ready(ctx); err != nil {
		return engine.State{}, err
	}
	ctx, span := startSpan(ctx, "init_engine")
	defer func() { endSpan(span, err) }()

	threshold := engine.DefaultAutoApprovalThreshold
	if input.AutoApprovalThreshold != nil {
		threshold = *input.AutoApprovalThreshold
	}
	state, err := engine.New(input.Owner, input.Approvers, threshold, s.now())
	if err != nil {
		return engine.State{}, err
	}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		return s.state.CreateState(txCtx, state)
	}); err != nil {
		return engine.State{}, err
	}

	s.emit(ctx, "engine_initialized", map[string]string{
		"owner":                   state.Owner,
		"approvers":               strings.Join(state.Approvers, ","),
		"auto_approval_threshold": fmt.Sprint(state.AutoApprovalThreshold),
	})
	return state, nil
}

// UpdateConfig changes owner, approvers or the auto-approval threshold.
// Only the owner may call it.
func (s *Service) UpdateConfig(ctx context.Context, input UpdateConfigInput) (_ engine.State, err error) {
	if err := s.ready(ctx); err != nil {
		return engine.State{}, err
	}
	ctx, span := startSpan(ctx, "update_config")
	defer func() { endSpan(span, err) }()

	if input.Owner == nil && input.Approvers == nil && input.AutoApprovalThreshold == nil {
		return engine.State{}, errs.E(errNoConfigChange, "caller", input.Caller)
	}

	var state engine.State
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.state.GetState(txCtx)
		if err != nil {
			return err
		}
		if err := current.RequireOwner(input.Caller); err != nil {
			return err
		}
		update := engine.ConfigUpdate{
			Owner:                 input.Owner,
			Approvers:             input.Approvers,
			AutoApprovalThreshold: input.AutoApprovalThreshold,
		}
		if err := current.Apply(update, s.now()); err != nil {
			return err
		}
		if err := s.state.SaveState(txCtx, current); err != nil {
			return err
		}
		state = current
		return nil
	}); err != nil {
		return engine.State{}, err
	}

	s.emit(ctx, "config_updated", map[string]string{
		"caller":                  input.Caller,
		"owner":                   state.Owner,
		"approvers":               strings.Join(state.Approvers, ","),
		"auto_approval_threshold": fmt.Sprint(state.AutoApprovalThreshold),
	})
	return state, nil
}
