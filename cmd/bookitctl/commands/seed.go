package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sujalbistaa/bookit/cmd/bookitctl/output"
	"github.com/sujalbistaa/bookit/internal/auth"
	"github.com/sujalbistaa/bookit/internal/catalog"
	"github.com/sujalbistaa/bookit/internal/content"
	"github.com/sujalbistaa/bookit/internal/db"
	"github.com/sujalbistaa/bookit/internal/models"
)

const seedPassword = "password123"

var errAlreadySeeded = errors.New("demo data already present, rerun with --reset to replace it")

var resetBeforeSeed bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo users, posts, reviews and products",
	Long: `Load a small demo dataset. Every demo account uses the password
"password123"; admin@bookit.local is an admin.

Examples:
  bookitctl seed            # seed an empty database
  bookitctl seed --reset    # wipe every table first`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, log, err := openDatabase()
		if err != nil {
			return err
		}
		defer closeDatabase(gdb)

		if err := db.Migrate(gdb); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
		summary, err := seedDemo(cmd.Context(), gdb, log, resetBeforeSeed)
		if errors.Is(err, errAlreadySeeded) {
			output.Warning("%v", err)
			return nil
		}
		if err != nil {
			output.Error("Seeding failed")
			return err
		}

		output.Section("Seed data created")
		output.Field("users", summary.Users)
		output.Field("posts", summary.Posts)
		output.Field("reviews", summary.Reviews)
		output.Field("products", summary.Products)
		output.Muted("Log in with any demo email and %q", seedPassword)
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&resetBeforeSeed, "reset", false, "Delete all existing data before seeding")
	rootCmd.AddCommand(seedCmd)
}

type seedSummary struct {
	Users, Posts, Reviews, Products int
}

type demoUser struct {
	username, email, bio, avatar string
	role                         models.Role
}

var demoUsers = []demoUser{
	{"admin", "admin@bookit.local", "Bookit admin and community moderator.", "https://i.pravatar.cc/150?img=12", models.RoleAdmin},
	{"lina_reader", "lina@bookit.local", "Syrian literature lover and reviewer.", "https://i.pravatar.cc/150?img=32", models.RoleUser},
	{"omar_writer", "omar@bookit.local", "Poet, translator, and cultural curator.", "https://i.pravatar.cc/150?img=22", models.RoleUser},
	{"rana_books", "rana@bookit.local", "Stationery collector and market seller.", "https://i.pravatar.cc/150?img=45", models.RoleUser},
}

// wipeOrder deletes dependents before the rows they point at.
var wipeOrder = []any{
	&models.Report{},
	&models.OrderItem{},
	&models.Order{},
	&models.ProductReview{},
	&models.Like{},
	&models.Comment{},
	&models.SavedPost{},
	&models.Follow{},
	&models.Post{},
	&models.Review{},
	&models.Product{},
	&models.User{},
}

// seedDemo inserts the demo dataset. Content goes through the services so
// derived counters start out consistent.
func seedDemo(ctx context.Context, gdb *gorm.DB, log *zap.Logger, reset bool) (*seedSummary, error) {
	if reset {
		for _, model := range wipeOrder {
			if err := gdb.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return nil, fmt.Errorf("failed to wipe %T: %w", model, err)
			}
		}
	} else {
		var existing int64
		if err := gdb.WithContext(ctx).Model(&models.User{}).Where("email = ?", demoUsers[0].email).Count(&existing).Error; err != nil {
			return nil, err
		}
		if existing > 0 {
			return nil, errAlreadySeeded
		}
	}

	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		return nil, err
	}
	accounts := make(map[string]auth.Principal, len(demoUsers))
	for _, du := range demoUsers {
		user := &models.User{
			Username: du.username,
			Email:    du.email,
			Password: hash,
			Role:     du.role,
			Bio:      du.bio,
			Avatar:   du.avatar,
		}
		if err := gdb.WithContext(ctx).Create(user).Error; err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", du.username, err)
		}
		accounts[du.username] = auth.PrincipalOf(user)
	}
	lina, omar, rana := accounts["lina_reader"], accounts["omar_writer"], accounts["rana_books"]

	social := content.NewService(gdb, log)
	for _, p := range []struct {
		author auth.Principal
		text   string
	}{
		{lina, "Just finished a re-read of Al-Khubz Al-Hafi. Powerful and raw."},
		{omar, "Weekly writing prompt: describe a city with one sensory detail per line."},
	} {
		if _, err := social.CreatePost(ctx, p.author, content.PostInput{Content: p.text}); err != nil {
			return nil, err
		}
	}

	reviews := []struct {
		author auth.Principal
		in     content.ReviewInput
	}{
		{lina, content.ReviewInput{
			BookTitle:  "Season of Migration to the North",
			BookAuthor: "Tayeb Salih",
			Rating:     5,
			Content:    "A masterclass in duality, exile, and identity. The language is poetic yet brutal.",
		}},
		{omar, content.ReviewInput{
			BookTitle:  "The Yacoubian Building",
			BookAuthor: "Alaa Al Aswany",
			Rating:     4,
			Content:    "A vibrant portrait of Cairo with layered characters and moral complexity.",
		}},
	}
	for _, r := range reviews {
		if _, err := social.CreateReview(ctx, r.author, r.in); err != nil {
			return nil, err
		}
	}

	products := []struct {
		seller auth.Principal
		in     catalog.ProductInput
	}{
		{rana, catalog.ProductInput{
			Title:       "Handmade Damascus Notebook",
			Description: "A5 notebook with traditional marbling and recycled paper.",
			Price:       decimal.NewFromInt(12),
			Category:    "notebook",
			Stock:       15,
			Images:      []string{"https://images.unsplash.com/photo-1519681393784-d120267933ba?auto=format&fit=crop&w=800&q=80"},
		}},
		{omar, catalog.ProductInput{
			Title:       "Arabic Calligraphy Bookmark Set",
			Description: "Set of 5 laminated bookmarks with classic calligraphy styles.",
			Price:       decimal.NewFromInt(8),
			Category:    "accessories",
			Stock:       30,
			Images:      []string{"https://images.unsplash.com/photo-1455390582262-044cdead277a?auto=format&fit=crop&w=800&q=80"},
		}},
	}
	shop := catalog.NewService(gdb, log)
	for _, p := range products {
		if _, err := shop.Create(ctx, p.seller, p.in); err != nil {
			return nil, err
		}
	}

	return &seedSummary{
		Users:    len(demoUsers),
		Posts:    2,
		Reviews:  len(reviews),
		Products: len(products),
	}, nil
}
