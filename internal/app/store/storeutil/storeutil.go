// Package storeutil holds helpers shared by the collection stores.
package storeutil

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Paginate returns *options.FindOptions with skip/limit given a 1-based page.
func Paginate(limit, page int64) *options.FindOptions {
	if limit <= 0 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	sk := (page - 1) * limit
	return options.Find().SetLimit(limit).SetSkip(sk)
}

// IsBadHint reports whether err means the hinted index does not exist.
// List queries catch this and retry unhinted/unsorted so a missing index
// degrades the ordering instead of failing the operation.
func IsBadHint(err error) bool {
	if err == nil {
		return false
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		// BadValue(2) carries the "hint provided does not correspond to
		// an existing index" message; planner failures report 291.
		if cmdErr.Code == 2 || cmdErr.Code == 291 || cmdErr.Name == "NoQueryExecutionPlans" {
			return true
		}
	}
	return strings.Contains(err.Error(), "hint provided does not correspond to an existing index")
}
