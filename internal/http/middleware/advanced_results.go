package middleware

import (
	"devcamper/internal/query"

	"github.com/gin-gonic/gin"
)

const advancedResultsKey = "advancedResults"

// AdvancedResults runs the list query described by the request's query
// string against source and stores the envelope for the handler.
// expand names relations to populate; they survive any select.
func AdvancedResults(source query.Source, expand ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := query.Parse(c.Request.URL.Query(), source.Schema())
		if err != nil {
			abort(c, err)
			return
		}

		records, total, err := source.Query(c.Request.Context(), d, expand)
		if err != nil {
			abort(c, err)
			return
		}

		data := make([]any, 0, len(records))
		for _, rec := range records {
			projected, err := query.Project(rec, d.Select, expand...)
			if err != nil {
				abort(c, err)
				return
			}
			data = append(data, projected)
		}

		c.Set(advancedResultsKey, query.Envelope{
			Success:    true,
			Count:      len(data),
			Pagination: query.Paginate(d, total),
			Data:       data,
		})
		c.Next()
	}
}

// Results returns the envelope stored by AdvancedResults.
func Results(c *gin.Context) (query.Envelope, bool) {
	v, ok := c.Get(advancedResultsKey)
	if !ok {
		return query.Envelope{}, false
	}
	env, ok := v.(query.Envelope)
	return env, ok
}
