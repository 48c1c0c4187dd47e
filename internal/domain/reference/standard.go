package reference

import (
	"strings"

	"gorm.io/datatypes"
)

// Standard is a published standard document held in the business database.
type Standard struct {
	ID                  int64  `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	StandardID          string `gorm:"column:standard_id;not null;index" json:"standardID"`
	DocumentName        string `gorm:"column:document_name" json:"documentName"`
	DocumentNameEnglish string `gorm:"column:document_name_english" json:"documentNameEnglish"`
	Scope               string `gorm:"column:scope;type:text" json:"scope"`
	Terms               []Term `gorm:"foreignKey:StandardRowID;references:ID" json:"terms"`
}

func (Standard) TableName() string { return "standards" }

// Term is a defined term of a standard. Notes holds a JSON array of Note.
type Term struct {
	ID            int64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	StandardRowID int64          `gorm:"column:standard_id;not null;index" json:"-"`
	TermID        int            `gorm:"column:term_id" json:"termID"`
	Term          string         `gorm:"column:term" json:"term"`
	TermEnglish   string         `gorm:"column:term_english" json:"termEnglish"`
	Definition    string         `gorm:"column:definition;type:text" json:"definition"`
	Notes         datatypes.JSON `gorm:"column:notes" json:"notes"`
}

func (Term) TableName() string { return "terms" }

type Note struct {
	ID      int    `json:"ID" yaml:"ID"`
	Content string `json:"content" yaml:"content"`
}

// CanonicalStandardID strips every space so "GB/T 1234" and "GB/T1234" collide.
func CanonicalStandardID(id string) string {
	return strings.ReplaceAll(id, " ", "")
}
