package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sujalbistaa/bookit/internal/apperr"
	"github.com/sujalbistaa/bookit/internal/auth"
	"github.com/sujalbistaa/bookit/internal/models"
	"github.com/sujalbistaa/bookit/internal/testutil"
)

func TestDashboard(t *testing.T) {
	gdb := testutil.NewDB(t)
	svc := NewService(gdb, zap.NewNop())
	ctx := context.Background()

	admin := auth.PrincipalOf(testutil.CreateUser(t, gdb, "admin", models.RoleAdmin))
	omar := testutil.CreateUser(t, gdb, "omar_writer", models.RoleUser)
	lina := testutil.CreateUser(t, gdb, "lina_reader", models.RoleUser)
	for range 3 {
		testutil.CreatePost(t, gdb, omar.ID, "omar post")
	}
	testutil.CreatePost(t, gdb, lina.ID, "lina post")
	testutil.CreateReview(t, gdb, lina.ID, "Men in the Sun")

	low := testutil.CreateProduct(t, gdb, omar.ID, "Low", 5, 1)
	high := testutil.CreateProduct(t, gdb, omar.ID, "High", 5, 1)
	require.NoError(t, gdb.Model(low).Updates(map[string]any{"ratings_average": 2.5, "ratings_count": 2}).Error)
	require.NoError(t, gdb.Model(high).Updates(map[string]any{"ratings_average": 4.75, "ratings_count": 4}).Error)

	old := testutil.CreatePost(t, gdb, lina.ID, "from last month")
	require.NoError(t, gdb.Model(old).UpdateColumn("created_at", time.Now().AddDate(0, -1, 0)).Error)

	d, err := svc.Dashboard(ctx, admin)
	require.NoError(t, err)

	assert.Equal(t, Counts{Users: 3, Posts: 5, Reviews: 1, Products: 2}, d.Counts)

	require.Len(t, d.Series.Posts, seriesDays)
	assert.Equal(t, time.Now().UTC().Format(time.DateOnly), d.Series.Posts[seriesDays-1].Day)
	var recent int64
	for _, day := range d.Series.Posts {
		recent += day.Count
	}
	assert.EqualValues(t, 4, recent, "posts older than the window are excluded")
	assert.Len(t, d.Series.Orders, seriesDays)

	require.Len(t, d.TopAuthors, 2)
	assert.Equal(t, Author{ID: omar.ID, Username: "omar_writer", Total: 3}, d.TopAuthors[0])
	assert.Equal(t, "lina_reader", d.TopAuthors[1].Username)
	assert.EqualValues(t, 2, d.TopAuthors[1].Total)

	require.Len(t, d.TopProducts, 2)
	assert.Equal(t, high.ID, d.TopProducts[0].ID)

	_, err = svc.Dashboard(ctx, auth.PrincipalOf(lina))
	assert.True(t, apperr.IsForbidden(err))
}
