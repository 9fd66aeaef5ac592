package repo

import (
	"strconv"
	"strings"
)

// int64Array renders ids as a Postgres array literal for use with a
// ::bigint[] cast. An empty slice renders as the empty array.
func int64Array(ids []int64) string {
	if len(ids) == 0 {
		return "{}"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
