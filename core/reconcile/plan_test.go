package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMutator struct {
	*mockAdapter
	calls map[ActionType][]string
	err   error
}

func newMockMutator(name string) *mockMutator {
	return &mockMutator{mockAdapter: sampleAdapter(name), calls: map[ActionType][]string{}}
}

func (m *mockMutator) MarkMissingBatch(ctx context.Context, keys []string) error {
	m.calls[ActionMarkMissing] = append(m.calls[ActionMarkMissing], keys...)
	return m.err
}

func (m *mockMutator) DeleteStorageBatch(ctx context.Context, keys []string) error {
	m.calls[ActionDeleteStorage] = append(m.calls[ActionDeleteStorage], keys...)
	return m.err
}

func (m *mockMutator) MarkStoredBatch(ctx context.Context, keys []string) error {
	m.calls[ActionMarkStored] = append(m.calls[ActionMarkStored], keys...)
	return m.err
}

func TestReconcileWithPlan_ReportOnly(t *testing.T) {
	plan, err := ReconcileWithPlan(context.Background(), &Spec{Adapter: sampleAdapter("report")}, nil, nil, "", ReconcileOptions{})
	require.NoError(t, err)

	assert.Equal(t, PlanSummary{TotalItems: 5, MissingStorage: 1, MissingDB: 1, Mismatches: 1}, plan.Summary)
	assert.Empty(t, plan.Actions)
}

func TestReconcileWithPlan_PurgeAndSync(t *testing.T) {
	spec := &Spec{Adapter: sampleAdapter("purge")}

	plan, err := ReconcileWithPlan(context.Background(), spec, nil, nil, "", ReconcileOptions{DoPurge: true})
	require.NoError(t, err)
	assert.Equal(t, []Action{
		{Type: ActionMarkMissing, Key: "b", Reason: "object missing from storage"},
		{Type: ActionDeleteStorage, Key: "e", Reason: "no database entry refers to object"},
	}, plan.Actions)
	assert.Equal(t, 2, plan.Summary.PurgeActions)
	assert.Equal(t, 0, plan.Summary.SyncActions)

	plan, err = ReconcileWithPlan(context.Background(), spec, nil, nil, "", ReconcileOptions{DoSync: true})
	require.NoError(t, err)
	require.Len(t, plan.Actions, 1)
	assert.Equal(t, ActionMarkStored, plan.Actions[0].Type)
	assert.Equal(t, "d", plan.Actions[0].Key)
	assert.Equal(t, 1, plan.Summary.SyncActions)
}

func TestApplyPlan_RequiresConfirmation(t *testing.T) {
	mutator := newMockMutator("confirm")
	spec := &Spec{Adapter: mutator}
	plan, err := ReconcileWithPlan(context.Background(), spec, nil, nil, "", ReconcileOptions{DoPurge: true, DoSync: true})
	require.NoError(t, err)

	for _, opts := range []ReconcileOptions{
		{DoPurge: true, DoSync: true},
		{DoPurge: true, DoSync: true, Confirmed: true, DryRun: true},
	} {
		executed, err := ApplyPlan(context.Background(), spec, plan, opts)
		require.NoError(t, err)
		assert.Zero(t, executed)
	}
	assert.Empty(t, mutator.calls)
}

func TestApplyPlan_GroupsActions(t *testing.T) {
	mutator := newMockMutator("apply")
	spec := &Spec{Adapter: mutator}
	opts := ReconcileOptions{DoPurge: true, DoSync: true, Confirmed: true}

	plan, executed, err := ReconcileAndApply(context.Background(), spec, nil, nil, "", opts)
	require.NoError(t, err)
	assert.Len(t, plan.Actions, 3)
	assert.Equal(t, 3, executed)
	assert.Equal(t, []string{"b"}, mutator.calls[ActionMarkMissing])
	assert.Equal(t, []string{"e"}, mutator.calls[ActionDeleteStorage])
	assert.Equal(t, []string{"d"}, mutator.calls[ActionMarkStored])
}

func TestApplyPlan_Errors(t *testing.T) {
	plan := &ReconcilePlan{Actions: []Action{{Type: ActionMarkMissing, Key: "b"}}}
	opts := ReconcileOptions{Confirmed: true}

	_, err := ApplyPlan(context.Background(), &Spec{Adapter: sampleAdapter("readonly")}, plan, opts)
	assert.EqualError(t, err, "adapter readonly does not implement Mutator interface")

	mutator := newMockMutator("failing")
	mutator.err = errors.New("db down")
	executed, err := ApplyPlan(context.Background(), &Spec{Adapter: mutator}, plan, opts)
	assert.ErrorContains(t, err, "failed to apply mark_not_uploaded: db down")
	assert.Zero(t, executed)
}
