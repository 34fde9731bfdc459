package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/pebble/internal/ports/primary"
	"github.com/example/pebble/internal/prompt"
)

func newTestRewriteService(model *fakeModel) *RewriteServiceImpl {
	return NewRewriteService(model, RewriteSettings{Temperature: 0.2, MaxTokens: 80}, nil)
}

func TestRewriteService_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  primary.MutateRequest
		want error
	}{
		{"missing text", primary.MutateRequest{Stage: 1.0}, ErrTextRequired},
		{"empty text", primary.MutateRequest{Text: "", Stage: 1.0}, ErrTextRequired},
		{"non-string text", primary.MutateRequest{Text: 42.0, Stage: 1.0}, ErrTextRequired},
		{"missing stage", primary.MutateRequest{Text: "walk"}, ErrInvalidStage},
		{"non-numeric stage", primary.MutateRequest{Text: "walk", Stage: "two"}, ErrInvalidStage},
		{"object stage", primary.MutateRequest{Text: "walk", Stage: map[string]any{}}, ErrInvalidStage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeModel{reply: "x"}
			_, err := newTestRewriteService(model).Mutate(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, model.requests)
		})
	}
}

func TestRewriteService_BlankTextReturnsEmpty(t *testing.T) {
	model := &fakeModel{reply: "x"}
	out, err := newTestRewriteService(model).Mutate(context.Background(), primary.MutateRequest{Text: "   ", Stage: 2.0})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, model.requests)
}

func TestRewriteService_StageZeroEchoes(t *testing.T) {
	model := &fakeModel{reply: "x"}
	out, err := newTestRewriteService(model).Mutate(context.Background(), primary.MutateRequest{Text: ` "walk"   daily `, Stage: 0.0})
	require.NoError(t, err)
	assert.Equal(t, "walk daily", out)
	assert.Empty(t, model.requests)
}

func TestRewriteService_CallsModel(t *testing.T) {
	model := &fakeModel{reply: "  「walk when it's   convenient」 "}
	svc := newTestRewriteService(model)

	out, err := svc.Mutate(context.Background(), primary.MutateRequest{Text: "walk daily", Stage: "2"})
	require.NoError(t, err)
	assert.Equal(t, "walk when its convenient", out)

	require.Len(t, model.requests, 1)
	req := model.requests[0]
	assert.Equal(t, 0.2, req.Temperature)
	assert.Equal(t, 80, req.MaxTokens)
	assert.Contains(t, req.Prompt, "walk daily")
	assert.Contains(t, req.Prompt, prompt.Default().Guides["2"])
}

func TestRewriteService_ClampsStage(t *testing.T) {
	model := &fakeModel{reply: "ok"}
	svc := newTestRewriteService(model)

	_, err := svc.Mutate(context.Background(), primary.MutateRequest{Text: "walk", Stage: 9.7})
	require.NoError(t, err)
	require.Len(t, model.requests, 1)
	assert.Contains(t, model.requests[0].Prompt, prompt.Default().Guides["4"])

	out, err := svc.Mutate(context.Background(), primary.MutateRequest{Text: "walk", Stage: -3.0})
	require.NoError(t, err)
	assert.Equal(t, "walk", out)
	assert.Len(t, model.requests, 1, "negative stages clamp to 0 and echo")
}

func TestRewriteService_EmptyCompletionEchoesInput(t *testing.T) {
	model := &fakeModel{reply: ` "" `}
	out, err := newTestRewriteService(model).Mutate(context.Background(), primary.MutateRequest{Text: "walk daily", Stage: 1.0})
	require.NoError(t, err)
	assert.Equal(t, "walk daily", out)
}

func TestRewriteService_ModelError(t *testing.T) {
	model := &fakeModel{err: errors.New("quota exceeded")}
	_, err := newTestRewriteService(model).Mutate(context.Background(), primary.MutateRequest{Text: "walk", Stage: 1.0})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTextRequired)
	assert.Contains(t, err.Error(), "fake:model")
}

func TestRewriteService_Update(t *testing.T) {
	model := &fakeModel{reply: "ok"}
	svc := newTestRewriteService(model)

	svc.Update(RewriteSettings{Temperature: 0.7, MaxTokens: 40})
	_, err := svc.Mutate(context.Background(), primary.MutateRequest{Text: "walk", Stage: true})
	require.NoError(t, err)

	require.Len(t, model.requests, 1)
	assert.Equal(t, 0.7, model.requests[0].Temperature)
	assert.Equal(t, 40, model.requests[0].MaxTokens)
	assert.NotNil(t, svc.Settings().Catalog, "a nil catalog keeps the previous one")
}
