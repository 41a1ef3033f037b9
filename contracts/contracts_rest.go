package contracts

import (
	"net/http"

	"signoff/bizerror"
	"signoff/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathContracts = "/v1/contracts"
)

func RegisterContractsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathContracts, middleWares...)
	g.POST("", handleCreateContract)
	g.GET("", handleQueryContracts)
	g.GET(":id", handleDetailContract)
	g.PUT(":id", handleUpdateContract)
	g.DELETE(":id", handleDeleteContract)
	g.POST(":id/signatures", handleSignContract)
	g.POST(":id/termination", handleTerminateContract)
}

func handleCreateContract(c *gin.Context) {
	creation := ContractCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := CreateContractFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleQueryContracts(c *gin.Context) {
	query := ContractQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	records, err := QueryContractsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleDetailContract(c *gin.Context) {
	record, err := DetailContractFunc(parseIdParam(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleUpdateContract(c *gin.Context) {
	updating := ContractUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := UpdateContractFunc(parseIdParam(c), &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleDeleteContract(c *gin.Context) {
	if err := DeleteContractFunc(parseIdParam(c), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func handleSignContract(c *gin.Context) {
	creation := SignatureCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	creation.IpAddress = c.ClientIP()
	creation.UserAgent = c.Request.UserAgent()

	record, err := SignContractFunc(parseIdParam(c), &creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleTerminateContract(c *gin.Context) {
	req := TerminationRequest{}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := TerminateContractFunc(parseIdParam(c), &req, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func parseIdParam(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return id
}
