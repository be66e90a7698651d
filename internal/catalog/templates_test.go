package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dev0919/Fitness-App1/internal/domain"
	"github.com/dev0919/Fitness-App1/internal/store/memory"
)

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	created, err := Seed(ctx, store)
	require.NoError(t, err)
	require.Equal(t, len(Templates()), created)

	again, err := Seed(ctx, store)
	require.NoError(t, err)
	require.Zero(t, again)

	templates, err := store.ListWorkouts(ctx, domain.TemplateOwnerID)
	require.NoError(t, err)
	require.Len(t, templates, created)

	for _, tpl := range templates {
		require.True(t, tpl.IsTemplate())
		require.True(t, tpl.Difficulty.Valid())
		require.True(t, tpl.Type.Valid())
		exercises, err := store.ListExercises(ctx, tpl.ID)
		require.NoError(t, err)
		require.NotEmpty(t, exercises)
	}
}
