package client

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/headcookai/headcook/internal/types"
)

func TestReduce(t *testing.T) {
	searching := State{Status: Searching, Generation: 2, Ingredients: "eggs", Recipes: []types.Recipe{{Name: "Old"}}}

	tests := []struct {
		name   string
		state  State
		action Action
		want   State
	}{
		{
			name:   "submit starts a new generation",
			state:  State{Generation: 1, Error: "previous"},
			action: Submit{Ingredients: "  eggs ", Cuisines: []string{"Thai"}},
			want:   State{Status: Searching, Generation: 2, Ingredients: "eggs", Cuisines: []string{"Thai"}},
		},
		{
			name:   "blank ingredients stay idle",
			state:  State{Generation: 1},
			action: Submit{Ingredients: "   "},
			want:   State{Generation: 1, Outcome: OutcomeInvalid, Error: MsgEmptyIngredients},
		},
		{
			name:   "submit while searching is ignored",
			state:  searching,
			action: Submit{Ingredients: "rice"},
			want:   searching,
		},
		{
			name:   "success",
			state:  searching,
			action: Succeeded{Generation: 2, Recipes: []types.Recipe{{Name: "Omelette"}}, SearchCount: 4},
			want:   State{Status: Idle, Outcome: OutcomeSuccess, Generation: 2, Ingredients: "eggs", Recipes: []types.Recipe{{Name: "Omelette"}}, SearchCount: 4},
		},
		{
			name:   "stale success is ignored",
			state:  searching,
			action: Succeeded{Generation: 1, Recipes: []types.Recipe{{Name: "Stale"}}},
			want:   searching,
		},
		{
			name:   "quota failure asks to sign in and clears recipes",
			state:  searching,
			action: Failed{Generation: 2, Err: &APIError{StatusCode: http.StatusForbidden}},
			want:   State{Status: Idle, Outcome: OutcomeFailed, Generation: 2, Ingredients: "eggs", Error: MsgSignIn},
		},
		{
			name:   "unauthenticated failure asks to sign in",
			state:  searching,
			action: Failed{Generation: 2, Err: &APIError{StatusCode: http.StatusUnauthorized}},
			want:   State{Status: Idle, Outcome: OutcomeFailed, Generation: 2, Ingredients: "eggs", Error: MsgSignIn},
		},
		{
			name:   "other failures are generic",
			state:  searching,
			action: Failed{Generation: 2, Err: &APIError{StatusCode: http.StatusInternalServerError}},
			want:   State{Status: Idle, Outcome: OutcomeFailed, Generation: 2, Ingredients: "eggs", Error: MsgSearchFailed},
		},
		{
			name:   "cancel",
			state:  searching,
			action: Cancel{},
			want:   State{Status: Idle, Outcome: OutcomeCancelled, Generation: 2, Ingredients: "eggs"},
		},
		{
			name:   "response after cancel is ignored",
			state:  State{Status: Idle, Outcome: OutcomeCancelled, Generation: 2},
			action: Succeeded{Generation: 2, Recipes: []types.Recipe{{Name: "Late"}}},
			want:   State{Status: Idle, Outcome: OutcomeCancelled, Generation: 2},
		},
		{
			name:   "cancel while idle is ignored",
			state:  State{Generation: 3, Recipes: []types.Recipe{{Name: "Kept"}}},
			action: Cancel{},
			want:   State{Generation: 3, Recipes: []types.Recipe{{Name: "Kept"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reduce(tt.state, tt.action))
		})
	}
}

type fakeBackend struct {
	search      func(ctx context.Context, ingredients string, cuisines []string) (*types.SearchResponse, error)
	image       func(ctx context.Context, name string) (string, error)
	searchCalls atomic.Int32
}

func (f *fakeBackend) Search(ctx context.Context, ingredients string, cuisines []string) (*types.SearchResponse, error) {
	f.searchCalls.Add(1)
	return f.search(ctx, ingredients, cuisines)
}

func (f *fakeBackend) GenerateImage(ctx context.Context, name string) (string, error) {
	return f.image(ctx, name)
}

func threeRecipes(context.Context, string, []string) (*types.SearchResponse, error) {
	return &types.SearchResponse{
		Recipes: []types.Recipe{
			{Name: "Chicken Risotto", Instructions: "a"},
			{Name: "Fried Rice", Instructions: "b"},
			{Name: "Congee", Instructions: "c"},
		},
		SearchCount: 1,
	}, nil
}

func TestSession_SearchWithImages(t *testing.T) {
	backend := &fakeBackend{
		search: threeRecipes,
		image: func(_ context.Context, name string) (string, error) {
			if name == "Fried Rice" {
				return "", errors.New("image upstream failed")
			}
			return "https://images.example/" + name, nil
		},
	}
	session := NewSession(backend, 2, zap.NewNop())

	state, err := session.Search(context.Background(), "chicken, rice", []string{"Italian"})
	require.NoError(t, err)

	assert.Equal(t, Idle, state.Status)
	assert.Equal(t, OutcomeSuccess, state.Outcome)
	assert.Empty(t, state.Error)
	require.Len(t, state.Recipes, 3)
	assert.Equal(t, "https://images.example/Chicken Risotto", state.Recipes[0].Image)
	assert.Empty(t, state.Recipes[1].Image)
	assert.Equal(t, "https://images.example/Congee", state.Recipes[2].Image)
}

func TestSession_BlankIngredientsMakeNoCall(t *testing.T) {
	backend := &fakeBackend{search: threeRecipes}
	session := NewSession(backend, 2, zap.NewNop())

	state, err := session.Search(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, ErrSearchNotStarted)
	assert.Equal(t, MsgEmptyIngredients, state.Error)
	assert.Equal(t, int32(0), backend.searchCalls.Load())
}

func TestSession_FailureClearsRecipes(t *testing.T) {
	var fail atomic.Bool
	backend := &fakeBackend{
		search: func(ctx context.Context, ingredients string, cuisines []string) (*types.SearchResponse, error) {
			if fail.Load() {
				return nil, &APIError{StatusCode: http.StatusForbidden, Message: "free search limit reached"}
			}
			return threeRecipes(ctx, ingredients, cuisines)
		},
		image: func(context.Context, string) (string, error) { return "", nil },
	}
	session := NewSession(backend, 0, zap.NewNop())

	state, err := session.Search(context.Background(), "eggs", nil)
	require.NoError(t, err)
	require.Len(t, state.Recipes, 3)

	fail.Store(true)
	state, err = session.Search(context.Background(), "eggs", nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, state.Outcome)
	assert.Empty(t, state.Recipes)
	assert.Equal(t, MsgSignIn, state.Error)
}

func TestSession_CancelSuppressesLateResponse(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{
		search: func(ctx context.Context, ingredients string, cuisines []string) (*types.SearchResponse, error) {
			// Ignore ctx to simulate a response that arrives anyway
			<-release
			return threeRecipes(ctx, ingredients, cuisines)
		},
		image: func(context.Context, string) (string, error) { return "https://images.example/x", nil },
	}
	session := NewSession(backend, 2, zap.NewNop())

	require.True(t, session.Start(context.Background(), "eggs", nil))
	assert.False(t, session.Start(context.Background(), "rice", nil), "second submit while searching")

	session.Cancel()
	state := session.State()
	assert.Equal(t, Idle, state.Status)
	assert.Equal(t, OutcomeCancelled, state.Outcome)

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, session.Wait(ctx))

	state = session.State()
	assert.Equal(t, OutcomeCancelled, state.Outcome)
	assert.Empty(t, state.Recipes)
	assert.Equal(t, int32(1), backend.searchCalls.Load())
}

func TestSession_CancelAbortsRequest(t *testing.T) {
	backend := &fakeBackend{
		search: func(ctx context.Context, _ string, _ []string) (*types.SearchResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	session := NewSession(backend, 2, zap.NewNop())

	require.True(t, session.Start(context.Background(), "eggs", nil))
	session.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, session.Wait(ctx))
	assert.Equal(t, OutcomeCancelled, session.State().Outcome)
	assert.Empty(t, session.State().Error)
}

func TestSession_Subscribe(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{
		search: func(ctx context.Context, ingredients string, cuisines []string) (*types.SearchResponse, error) {
			<-release
			return threeRecipes(ctx, ingredients, cuisines)
		},
		image: func(context.Context, string) (string, error) { return "", nil },
	}
	session := NewSession(backend, 2, zap.NewNop())

	updates, unsubscribe := session.Subscribe()
	defer unsubscribe()

	initial := <-updates
	assert.Equal(t, Idle, initial.Status)

	require.True(t, session.Start(context.Background(), "eggs", nil))
	searching := <-updates
	assert.Equal(t, Searching, searching.Status)

	close(release)
	select {
	case done := <-updates:
		assert.Equal(t, OutcomeSuccess, done.Outcome)
		assert.Len(t, done.Recipes, 3)
	case <-time.After(5 * time.Second):
		t.Fatal("no update after the search finished")
	}
}
