package client

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/headcookai/headcook/internal/types"
)

// ImageFetcher returns an image URL for a recipe name
type ImageFetcher func(ctx context.Context, recipeName string) (string, error)

// AttachImages fetches one image per recipe concurrently, at most limit at a
// time (limit <= 0 means no limit), and waits for all of them. Recipes whose
// fetch failed keep an empty Image. The input slice is not modified.
func AttachImages(ctx context.Context, recipes []types.Recipe, fetch ImageFetcher, limit int) []types.Recipe {
	out := make([]types.Recipe, len(recipes))
	copy(out, recipes)

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := range out {
		i := i
		g.Go(func() error {
			url, err := fetch(ctx, out[i].Name)
			if err != nil {
				// One missing image must not fail the others
				return nil
			}
			out[i].Image = url
			return nil
		})
	}
	_ = g.Wait()

	return out
}
