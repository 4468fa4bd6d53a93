package util

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/joulaa-platform/joulaa-core-api/biz/application/dto/basic"
	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx"
	"github.com/joulaa-platform/joulaa-core-api/types/errno"
)

// BuildFindOption 分页查询
func BuildFindOption(page *basic.Page) *options.FindOptionsBuilder {
	return options.Find().
		SetSkip((page.GetPage() - 1) * page.GetSize()).
		SetLimit(page.GetSize())
}

// HasMore 按总数判断之后是否还有下一页
func HasMore(total int64, page *basic.Page) bool {
	return total > page.GetPage()*page.GetSize()
}

// SplitAndHasMore 游标分页时多取一条, 此处截断
func SplitAndHasMore[T any](list []T, page *basic.Page) ([]T, bool) {
	if size := page.GetSize(); int64(len(list)) > size {
		return list[:size:size], true
	}
	return list, false
}

func ObjectIDFromHex(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, errorx.WrapByCode(err, errno.OIDErrCode)
	}
	return oid, nil
}

func ObjectIDsFromHex(ids ...string) ([]primitive.ObjectID, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := ObjectIDFromHex(id)
		if err != nil {
			return nil, err
		}
		oids = append(oids, oid)
	}
	return oids, nil
}
