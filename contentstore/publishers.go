package contentstore

import (
	"fmt"

	"signoff/bizerror"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

type MarkPublishedFunc func(contentId types.ID, publishTime types.Timestamp, tx *gorm.DB) error

// publishers dispatches by content type. It is a fixed table over the closed
// enumeration, not a plugin registry.
var publishers = map[ContentType]MarkPublishedFunc{
	TypeArticle: markPublished(func() interface{} { return &Article{} }),
	TypePost:    markPublished(func() interface{} { return &Post{} }),
	TypeBlog:    markPublished(func() interface{} { return &Blog{} }),
	TypeCourse:  markPublished(func() interface{} { return &Course{} }),
	TypeCase:    markPublished(func() interface{} { return &Case{} }),
	TypeFile:    markPublished(func() interface{} { return &File{} }),
	TypeImage:   markPublished(func() interface{} { return &Image{} }),
}

var MarkPublishedDispatchFunc = MarkPublishedDispatch

func init() {
	for _, t := range AllContentTypes() {
		if publishers[t] == nil {
			panic(fmt.Sprintf("content store dispatch table has no entry for type %s", t))
		}
	}
}

// MarkPublishedDispatch flips the publication flag of one content item within
// the caller's transaction.
func MarkPublishedDispatch(contentType ContentType, contentId types.ID, publishTime types.Timestamp, tx *gorm.DB) error {
	publish, found := publishers[contentType]
	if !found {
		return bizerror.ErrUnknownContentType
	}
	return publish(contentId, publishTime, tx)
}

func markPublished(model func() interface{}) MarkPublishedFunc {
	return func(contentId types.ID, publishTime types.Timestamp, tx *gorm.DB) error {
		q := tx.Model(model()).Where("id = ?", contentId).
			Updates(map[string]interface{}{"published": true, "publish_time": publishTime})
		if q.Error != nil {
			return q.Error
		}
		if q.RowsAffected == 0 {
			return bizerror.ErrNotFound
		}
		return nil
	}
}
