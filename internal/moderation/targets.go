package moderation

import (
	"gorm.io/gorm"

	"github.com/sujalbistaa/bookit/internal/catalog"
	"github.com/sujalbistaa/bookit/internal/content"
	"github.com/sujalbistaa/bookit/internal/models"
	"github.com/sujalbistaa/bookit/internal/users"
)

// Target is the entity a report accuses.
type Target struct {
	Kind models.Kind
	ID   string
}

// targetOps are the store operations a report target supports. A nil
// operation means the action has no effect on that kind.
type targetOps struct {
	exists      func(tx *gorm.DB, id string) (bool, error)
	remove      func(tx *gorm.DB, id string) error
	ban         func(tx *gorm.DB, id string) error
	countReport func(tx *gorm.DB, id string) error
}

func contentOps(kind models.Kind, counted bool) targetOps {
	ops := targetOps{
		exists: func(tx *gorm.DB, id string) (bool, error) { return content.Exists(tx, kind, id) },
		remove: func(tx *gorm.DB, id string) error { return content.DeleteByID(tx, kind, id) },
	}
	if counted {
		ops.countReport = func(tx *gorm.DB, id string) error { return content.IncrementReportCount(tx, kind, id) }
	}
	return ops
}

var targets = map[models.Kind]targetOps{
	models.KindPost:    contentOps(models.KindPost, true),
	models.KindReview:  contentOps(models.KindReview, true),
	models.KindComment: contentOps(models.KindComment, false),
	models.KindProduct: {
		exists: catalog.Exists,
		remove: catalog.DeleteByID,
	},
	models.KindUser: {
		exists: users.Exists,
		ban:    func(tx *gorm.DB, id string) error { return users.SetBanned(tx, id, true) },
	},
}

func opsFor(kind models.Kind) (targetOps, bool) {
	ops, ok := targets[kind]
	return ops, ok
}
