package models

type ReportStatus string

const (
	ReportOpen      ReportStatus = "open"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportOpen, ReportResolved, ReportDismissed:
		return true
	}
	return false
}

type ReportAction string

const (
	ActionNone    ReportAction = "none"
	ActionDeleted ReportAction = "deleted"
	ActionWarned  ReportAction = "warned"
	ActionBanned  ReportAction = "banned"
)

func (a ReportAction) Valid() bool {
	switch a {
	case ActionNone, ActionDeleted, ActionWarned, ActionBanned:
		return true
	}
	return false
}

// Report accuses one target of a given kind.
type Report struct {
	Base
	ReporterID string       `gorm:"type:varchar(36);not null;index" json:"reporterId"`
	Reporter   *User        `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	TargetType Kind         `gorm:"size:16;not null;index:idx_report_target" json:"targetType"`
	TargetID   string       `gorm:"type:varchar(36);not null;index:idx_report_target" json:"targetId"`
	Reason     string       `gorm:"type:text;not null" json:"reason"`
	Status     ReportStatus `gorm:"size:16;not null;default:open;index" json:"status"`
	Action     ReportAction `gorm:"size:16;not null;default:none" json:"action"`
	AdminNote  string       `gorm:"type:text" json:"adminNote"`
	ResolvedBy *string      `gorm:"type:varchar(36)" json:"resolvedBy"`
}
