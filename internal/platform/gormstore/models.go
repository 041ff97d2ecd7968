package gormstore

import (
	"time"

	"github.com/phrazzld/tasktracker/internal/domain"
)

// userModel maps the users table.
type userModel struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"`
	Email          string    `gorm:"size:320;not null;uniqueIndex"`
	HashedPassword string    `gorm:"size:1024;not null"`
	IsActive       bool      `gorm:"not null"`
	IsSuperuser    bool      `gorm:"not null"`
	IsVerified     bool      `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for userModel.
func (userModel) TableName() string {
	return "users"
}

// taskModel maps the tasks table and its associations.
type taskModel struct {
	ID             int64       `gorm:"primaryKey;autoIncrement"`
	Title          string      `gorm:"size:255;not null;check:tasks_title_not_empty,length(title) >= 1"`
	Description    *string     `gorm:"type:text"`
	IsActive       bool        `gorm:"not null"`
	CreatorID      int64       `gorm:"not null;index"`
	Creator        userModel   `gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE"`
	ExpirationDate *time.Time
	CreateDate     time.Time   `gorm:"not null;index"`
	UpdateDate     time.Time   `gorm:"not null"`
	CloseDate      *time.Time  `gorm:"check:tasks_close_date_matches_state,is_active = (close_date IS NULL)"`
	Responsibles   []userModel `gorm:"many2many:task_responsibles;joinForeignKey:TaskID;joinReferences:UserID"`
	Auditors       []userModel `gorm:"many2many:task_auditors;joinForeignKey:TaskID;joinReferences:UserID"`
}

// TableName returns the table name for taskModel.
func (taskModel) TableName() string {
	return "tasks"
}

func userFromDomain(u *domain.User) userModel {
	return userModel{
		ID:             u.ID,
		Email:          u.Email,
		HashedPassword: u.HashedPassword,
		IsActive:       u.IsActive,
		IsSuperuser:    u.IsSuperuser,
		IsVerified:     u.IsVerified,
		CreatedAt:      u.CreatedAt.UTC(),
		UpdatedAt:      u.UpdatedAt.UTC(),
	}
}

func (m userModel) toDomain() *domain.User {
	return &domain.User{
		ID:             m.ID,
		Email:          m.Email,
		HashedPassword: m.HashedPassword,
		IsActive:       m.IsActive,
		IsSuperuser:    m.IsSuperuser,
		IsVerified:     m.IsVerified,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

func (m userModel) ref() domain.UserRef {
	return domain.UserRef{ID: m.ID, Email: m.Email}
}

func taskFromDomain(t *domain.Task) taskModel {
	return taskModel{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		IsActive:       t.IsActive,
		CreatorID:      t.CreatorID,
		ExpirationDate: utc(t.ExpirationDate),
		CreateDate:     t.CreateDate.UTC(),
		UpdateDate:     t.UpdateDate.UTC(),
		CloseDate:      utc(t.CloseDate),
	}
}

func (m taskModel) toDomain() *domain.Task {
	t := &domain.Task{
		ID:             m.ID,
		Title:          m.Title,
		Description:    m.Description,
		IsActive:       m.IsActive,
		CreatorID:      m.CreatorID,
		Creator:        m.Creator.ref(),
		ExpirationDate: utc(m.ExpirationDate),
		CreateDate:     m.CreateDate.UTC(),
		UpdateDate:     m.UpdateDate.UTC(),
		CloseDate:      utc(m.CloseDate),
		Responsibles:   make([]domain.UserRef, 0, len(m.Responsibles)),
		Auditors:       make([]domain.UserRef, 0, len(m.Auditors)),
	}
	for _, u := range m.Responsibles {
		t.Responsibles = append(t.Responsibles, u.ref())
	}
	for _, u := range m.Auditors {
		t.Auditors = append(t.Auditors, u.ref())
	}
	return t
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
