package model

import (
	"time"
)

type User struct {
	ID             uint   `gorm:"primaryKey"`
	Username       string `gorm:"size:150;not null;uniqueIndex"`
	Email          string `gorm:"size:254;not null;uniqueIndex"`
	FirstName      string `gorm:"size:150"`
	LastName       string `gorm:"size:150"`
	Bio            string `gorm:"type:text"`
	Role           Role   `gorm:"type:varchar(16);not null;default:user"`
	IsSuperuser    bool   `gorm:"not null;default:false"`
	HashedPassword string `gorm:"not null;default:''"`
	LastLogin      *time.Time
	CreatedAt      time.Time
}

// OwnerID lets AdminOnly recognise an actor acting on its own record.
func (u *User) OwnerID() uint {
	return u.ID
}

type Category struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:256;not null"`
	Slug string `gorm:"size:50;not null;uniqueIndex"`
}

type Genre struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:256;not null"`
	Slug string `gorm:"size:50;not null;uniqueIndex"`
}

type Title struct {
	ID          uint     `gorm:"primaryKey"`
	Name        string   `gorm:"size:256;not null;index"`
	Year        int      `gorm:"not null;index"`
	Description string   `gorm:"type:text"`
	CategoryID  uint     `gorm:"not null;index"`
	Category    Category `gorm:"constraint:OnDelete:CASCADE;"`
	Genres      []Genre  `gorm:"many2many:title_genres;constraint:OnDelete:CASCADE;"`
}

type Review struct {
	ID       uint      `gorm:"primaryKey"`
	TitleID  uint      `gorm:"not null;uniqueIndex:idx_review_title_author"`
	AuthorID uint      `gorm:"not null;uniqueIndex:idx_review_title_author;index"`
	Text     string    `gorm:"type:text;not null"`
	Score    int       `gorm:"not null;check:score >= 1 AND score <= 10"`
	PubDate  time.Time `gorm:"autoCreateTime;index"`

	Title  Title `gorm:"constraint:OnDelete:CASCADE;"`
	Author User  `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
}

func (r Review) OwnerID() uint {
	return r.AuthorID
}

type Comment struct {
	ID       uint      `gorm:"primaryKey"`
	ReviewID uint      `gorm:"not null;index"`
	AuthorID uint      `gorm:"not null;index"`
	Text     string    `gorm:"type:text;not null"`
	PubDate  time.Time `gorm:"autoCreateTime;index"`

	Review Review `gorm:"constraint:OnDelete:CASCADE;"`
	Author User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
}

func (c Comment) OwnerID() uint {
	return c.AuthorID
}

// All lists the models in migration order.
func All() []any {
	return []any{&User{}, &Category{}, &Genre{}, &Title{}, &Review{}, &Comment{}}
}
