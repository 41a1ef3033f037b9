package contentstore

import "github.com/fundwit/go-commons/types"

// ContentType is a closed enumeration; the dispatch table must stay total
// over it.
type ContentType string

const (
	TypeArticle ContentType = "article"
	TypePost    ContentType = "post"
	TypeBlog    ContentType = "blog"
	TypeCourse  ContentType = "course"
	TypeCase    ContentType = "case"
	TypeFile    ContentType = "file"
	TypeImage   ContentType = "image"
)

func AllContentTypes() []ContentType {
	return []ContentType{TypeArticle, TypePost, TypeBlog, TypeCourse, TypeCase, TypeFile, TypeImage}
}

func IsValidContentType(t ContentType) bool {
	for _, v := range AllContentTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// The stores behind the dispatch table. The approval flow only ever flips the
// publication flag, it never touches the body of a content item.

type Article struct {
	ID          types.ID        `json:"id" gorm:"primary_key"`
	Published   bool            `json:"published"`
	PublishTime types.Timestamp `json:"publishTime" sql:"type:DATETIME(6)"`
}

type Post struct {
	ID          types.ID        `json:"id" gorm:"primary_key"`
	Published   bool            `json:"published"`
	PublishTime types.Timestamp `json:"publishTime" sql:"type:DATETIME(6)"`
}

type Blog struct {
	ID          types.ID        `json:"id" gorm:"primary_key"`
	Published   bool            `json:"published"`
	PublishTime types.Timestamp `json:"publishTime" sql:"type:DATETIME(6)"`
}

type Course struct {
	ID          types.ID        `json:"id" gorm:"primary_key"`
	Published   bool            `json:"published"`
	PublishTime types.Timestamp `json:"publishTime" sql:"type:DATETIME(6)"`
}

type Case struct {
	ID          types.ID        `json:"id" gorm:"primary_key"`
	Published   bool            `json:"published"`
	PublishTime types.Timestamp `json:"publishTime" sql:"type:DATETIME(6)"`
}

type File struct {
	ID          types.ID        `json:"id" gorm:"primary_key"`
	Published   bool            `json:"published"`
	PublishTime types.Timestamp `json:"publishTime" sql:"type:DATETIME(6)"`
}

type Image struct {
	ID          types.ID        `json:"id" gorm:"primary_key"`
	Published   bool            `json:"published"`
	PublishTime types.Timestamp `json:"publishTime" sql:"type:DATETIME(6)"`
}
