package idgen

import (
	"github.com/fundwit/go-commons/types"
	"github.com/sony/sonyflake"
)

func NextID(worker *sonyflake.Sonyflake) types.ID {
	id, err := worker.NextID()
	if err != nil {
		panic(err)
	}
	return types.ID(id)
}
