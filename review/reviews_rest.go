package review

import (
	"net/http"

	"signoff/bizerror"
	"signoff/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathContentSubmissions = "/v1/content-submissions"
)

func RegisterContentSubmissionsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathContentSubmissions, middleWares...)
	g.POST("", handleSubmitContent)
	g.GET("", handleQuerySubmissions)
	g.POST(":id/approval", handleApproveContent)
	g.POST(":id/rejection", handleRejectContent)
}

func handleSubmitContent(c *gin.Context) {
	creation := SubmissionCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := SubmitContentFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleApproveContent(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	note := ReviewNote{}
	if err := c.ShouldBindBodyWith(&note, binding.JSON); err != nil && err.Error() != "EOF" {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := ApproveContentFunc(id, &note, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleRejectContent(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	note := RejectionNote{}
	if err := c.ShouldBindBodyWith(&note, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := RejectContentFunc(id, &note, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleQuerySubmissions(c *gin.Context) {
	query := SubmissionQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	records, err := QuerySubmissionsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}
