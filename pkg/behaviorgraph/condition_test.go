package behaviorgraph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/behaviorgraph/pkg/behaviorgraph/vars"
)

func counting(name string, result bool, calls *int) Condition {
	return Func(name, func(vars.Reader) (bool, error) {
		*calls++
		return result, nil
	})
}

func TestConditionList_Vacuous(t *testing.T) {
	met, err := All().IsMet(nil)
	require.NoError(t, err)
	assert.True(t, met, "empty AND is met")

	met, err = Any().IsMet(nil)
	require.NoError(t, err)
	assert.False(t, met, "empty OR is not met")
}

func TestConditionList_And(t *testing.T) {
	store := vars.NewMemoryStore(map[string]any{"a": 1, "b": 2})

	tests := []struct {
		name  string
		conds []Condition
		want  bool
	}{
		{"all true", []Condition{Compare("a", "==", 1), Compare("b", "==", 2)}, true},
		{"first false", []Condition{Compare("a", "==", 0), Compare("b", "==", 2)}, false},
		{"second false", []Condition{Compare("a", "==", 1), Compare("b", "==", 0)}, false},
		{"single", []Condition{Compare("b", ">", 1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			met, err := All(tt.conds...).IsMet(store)
			require.NoError(t, err)
			assert.Equal(t, tt.want, met)
		})
	}
}

func TestConditionList_Or(t *testing.T) {
	store := vars.NewMemoryStore(map[string]any{"a": 1})

	met, err := Any(Compare("a", "==", 0), Compare("a", "==", 1)).IsMet(store)
	require.NoError(t, err)
	assert.True(t, met)

	met, err = Any(Compare("a", "==", 0), Never).IsMet(store)
	require.NoError(t, err)
	assert.False(t, met)
}

func TestConditionList_ShortCircuits(t *testing.T) {
	var first, second int

	met, _ := All(counting("f", false, &first), counting("s", true, &second)).IsMet(nil)
	assert.False(t, met)
	assert.Equal(t, 1, first)
	assert.Zero(t, second)

	first, second = 0, 0
	met, _ = Any(counting("f", true, &first), counting("s", false, &second)).IsMet(nil)
	assert.True(t, met)
	assert.Zero(t, second)
}

func TestConditionList_MalformedMemberNotMet(t *testing.T) {
	store := vars.NewMemoryStore(map[string]any{"a": 1})

	met, err := Any(Compare("missing", "==", 1), Compare("a", "==", 1)).IsMet(store)
	assert.True(t, met, "other members still decide")

	var mce *MalformedConditionError
	require.ErrorAs(t, err, &mce)
	assert.ErrorIs(t, err, vars.ErrNotFound)
	assert.Equal(t, "missing == 1", mce.Condition)
}

func TestConditionList_Nested(t *testing.T) {
	store := vars.NewMemoryStore(map[string]any{"gold": 50, "met_king": true, "guard_asleep": false})

	cond := All(
		Compare("gold", ">=", 10),
		Any(Compare("met_king", "==", true), Compare("guard_asleep", "==", true)),
	)
	met, err := Evaluate(cond, store)
	require.NoError(t, err)
	assert.True(t, met)
	assert.Equal(t, "(gold >= 10 and (met_king == true or guard_asleep == true))", cond.String())
	assert.Equal(t, []string{"gold", "guard_asleep", "met_king"}, cond.Variables())
}

func TestEvaluate_Errors(t *testing.T) {
	met, err := Evaluate(nil, nil)
	assert.False(t, met)
	assert.ErrorIs(t, err, ErrNilCondition)

	panicky := Func("panicky", func(vars.Reader) (bool, error) { panic("oops") })
	met, err = Evaluate(panicky, nil)
	assert.False(t, met)
	var mce *MalformedConditionError
	require.ErrorAs(t, err, &mce)
	assert.Equal(t, "panicky", mce.Condition)
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "condition", pe.Op)
	assert.Equal(t, CategoryNodeLocal, Categorize(err))

	failing := Func("failing", func(vars.Reader) (bool, error) { return true, errors.New("io") })
	met, err = Evaluate(failing, nil)
	assert.False(t, met, "an error means not met even if true was returned")
	require.ErrorAs(t, err, &mce)
}

func TestExpr(t *testing.T) {
	store := vars.NewMemoryStore(map[string]any{"hp": 5, "fleeing": false})

	met, err := Evaluate(MustExpr("hp < 10 and not fleeing"), store)
	require.NoError(t, err)
	assert.True(t, met)

	bad := Expr("hp <")
	met, err = Evaluate(bad, store)
	assert.False(t, met)
	assert.Error(t, err)
	assert.Nil(t, bad.(VariableUser).Variables())

	assert.Panics(t, func() { MustExpr("((") })
}

func TestNot(t *testing.T) {
	store := vars.NewMemoryStore(map[string]any{"door_open": false})

	met, err := Evaluate(Not(Compare("door_open", "==", true)), store)
	require.NoError(t, err)
	assert.True(t, met)

	met, err = Evaluate(Not(Compare("missing", "==", true)), store)
	assert.False(t, met, "negating a malformed condition is not met")
	assert.Error(t, err)

	assert.Equal(t, "not door_open == true", Not(Compare("door_open", "==", true)).(interface{ String() string }).String())
}

func TestNot_NegatesListWithMalformedMember(t *testing.T) {
	store := vars.NewMemoryStore(map[string]any{"alarm": false})
	bad := Compare("missing", "==", true)

	// The OR list resolves to false despite the bad member.
	met, err := Evaluate(Any(bad, Never), store)
	assert.False(t, met)
	require.Error(t, err)

	met, err = Evaluate(Not(Any(bad, Never)), store)
	assert.True(t, met)
	var mce *MalformedConditionError
	assert.ErrorAs(t, err, &mce)

	// Nested inside a list, the negation still counts.
	met, err = Evaluate(All(Not(Any(bad, Never)), Compare("alarm", "==", false)), store)
	assert.True(t, met)
	assert.Error(t, err)

	met, err = Evaluate(Not(Not(Any(bad, Always))), store)
	assert.True(t, met)
	assert.Error(t, err)
}

func TestAlwaysNever(t *testing.T) {
	met, err := Always.IsMet(nil)
	require.NoError(t, err)
	assert.True(t, met)

	met, err = Never.IsMet(nil)
	require.NoError(t, err)
	assert.False(t, met)
}

func TestLogic_String(t *testing.T) {
	assert.Equal(t, "and", And.String())
	assert.Equal(t, "or", Or.String())
}
