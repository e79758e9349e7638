package entities

import "time"

// DateLayout is the only accepted date format for author dates.
const DateLayout = "2006-01-02"

type Author struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"index;size:100;not null" json:"name"`
	BirthDate   *time.Time `gorm:"type:date" json:"birth_date,omitempty"`
	DateOfDeath *time.Time `gorm:"type:date" json:"date_of_death,omitempty"`
}

type Book struct {
	ID              uint     `gorm:"primaryKey" json:"id"`
	ISBN            *string  `gorm:"size:13" json:"isbn,omitempty"`
	Title           string   `gorm:"index;size:200;not null" json:"title"`
	PublicationYear int      `gorm:"not null" json:"publication_year"`
	AuthorID        uint     `gorm:"index;not null" json:"author_id"`
	Author          *Author  `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Cover           *string  `json:"cover,omitempty"`
	Rating          *float64 `json:"rating,omitempty"`
	AdditionalInfo  *string  `gorm:"type:text" json:"additional_info,omitempty"`
}

// BookWithAuthor is one row of the book-to-author join.
type BookWithAuthor struct {
	Book   Book   `json:"book"`
	Author Author `json:"author"`
}

// FormatDate renders an optional date in DateLayout, or "" when absent.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

// StringValue dereferences an optional text column.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// OptionalString maps "" to the absent value.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
