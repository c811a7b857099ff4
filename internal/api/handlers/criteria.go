package handlers

import "net/http"

// criteriaFromQuery turns the request's query string into a flat criteria
// map for the filter engine. Repeated parameters become a string slice so
// range filters can take their two bounds as separate values; everything
// else stays a single string. Unrecognized keys are passed through, the
// engine ignores them.
func criteriaFromQuery(r *http.Request) map[string]any {
	values := r.URL.Query()
	criteria := make(map[string]any, len(values))

	for key, vals := range values {
		switch len(vals) {
		case 0:
		case 1:
			criteria[key] = vals[0]
		default:
			criteria[key] = vals
		}
	}

	return criteria
}
