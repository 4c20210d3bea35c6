package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/attendance-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/pkg/session"
)

// queryString returns a pointer to a non-empty query value.
func queryString(r *http.Request, name string) *string {
	if v := r.URL.Query().Get(name); v != "" {
		return &v
	}
	return nil
}

// queryInt returns the query value as int, or 0 when absent or malformed.
// Validation of the resulting value is left to the DTO.
func queryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}

func periodFromQuery(r *http.Request) payroll.PeriodRequest {
	return payroll.PeriodRequest{
		Month: queryInt(r, "month"),
		Year:  queryInt(r, "year"),
	}
}

// requireSession writes 401 and returns false when the auth middleware did
// not attach a session.
func requireSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return nil, false
	}
	return sess, true
}

func writeFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
