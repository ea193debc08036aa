package inference

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/formgraph/form"
)

func slowInferer(d time.Duration) Inferer {
	return InfererFunc(func(ctx context.Context, _ string, _ []form.FormField) (map[string]string, error) {
		select {
		case <-time.After(d):
			return map[string]string{"slow": "done"}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
}

func TestTimeout(t *testing.T) {
	_, err := NewTimeout(slowInferer(time.Second), 10*time.Millisecond).Infer(context.Background(), "x", nil)
	assert.ErrorIs(t, err, ErrInferenceTimeout)

	out, err := NewTimeout(slowInferer(0), time.Second).Infer(context.Background(), "x", nil)
	require.NoError(t, err)
	assert.Equal(t, "done", out["slow"])

	out, err = NewTimeout(slowInferer(0), 0).Infer(context.Background(), "x", nil)
	require.NoError(t, err)
	assert.Equal(t, "done", out["slow"])
}

func TestTimeout_FallbackStillRuns(t *testing.T) {
	f := NewFallback(NewTimeout(slowInferer(time.Second), 10*time.Millisecond), NewRules(nil))
	out, err := f.Infer(context.Background(), "federal government", []form.FormField{categoryField()})
	require.NoError(t, err)
	assert.Equal(t, "Federal Government", out["V1FeeExemptionCategory"])
}

func TestTimeout_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewTimeout(slowInferer(time.Second), time.Second).Infer(ctx, "x", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func slowQuestioner(d time.Duration) Questioner {
	return QuestionerFunc(func(ctx context.Context, _ form.FormField, _ form.ValidationError) (string, error) {
		select {
		case <-time.After(d):
			return "slow question?", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
}

func TestTimeoutQuestioner(t *testing.T) {
	_, err := NewTimeoutQuestioner(slowQuestioner(time.Second), 10*time.Millisecond).
		GenerateQuestion(context.Background(), categoryField(), form.ValidationError{})
	assert.ErrorIs(t, err, ErrInferenceTimeout)

	q, err := NewTimeoutQuestioner(slowQuestioner(0), 0).
		GenerateQuestion(context.Background(), categoryField(), form.ValidationError{})
	require.NoError(t, err)
	assert.Equal(t, "slow question?", q)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewTimeoutQuestioner(slowQuestioner(time.Second), time.Second).
		GenerateQuestion(ctx, categoryField(), form.ValidationError{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTimeoutQuestioner_FallbackStillRuns(t *testing.T) {
	rules := NewRules(nil)
	want, err := rules.GenerateQuestion(context.Background(), categoryField(), form.ValidationError{})
	require.NoError(t, err)

	q := NewFallbackQuestioner(NewTimeoutQuestioner(slowQuestioner(time.Second), 10*time.Millisecond), rules)
	start := time.Now()
	got, err := q.GenerateQuestion(context.Background(), categoryField(), form.ValidationError{})
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
