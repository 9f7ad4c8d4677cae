package routes

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/mbolis/survey-api/httpx"
	"github.com/mbolis/survey-api/log"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

var validate = validator.New()

func init() {
	// report fields by their JSON names
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// urlID reads the {id} URL parameter, answering 400 when it is not a number.
func urlID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
		return 0, false
	}
	return id, true
}

// decode parses the JSON body into v and runs its validate tags.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), v)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		httpx.LogStatusMsg(w, http.StatusRequestEntityTooLarge, log.DebugLevel, "request.parse_body", "body exceeds %d bytes", tooLarge.Limit)
		return false
	}
	if err != nil {
		httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "malformed JSON body: %s", err)
		return false
	}

	err = validate.Struct(v)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]fieldError, 0, len(verrs))
		for _, fe := range verrs {
			_, field, _ := strings.Cut(fe.Namespace(), ".")
			details = append(details, fieldError{Field: field, Rule: fe.Tag(), Param: fe.Param()})
		}
		httpx.LogInvalid(w, r, "request.validate", details)
		return false
	}
	if err != nil {
		httpx.LogInternalError(w, "request.validate", err)
		return false
	}
	return true
}
