package middlewares

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"staycation/services"
)

// ErrorHandler writes the first error attached with c.Error using the response envelope.
func ErrorHandler(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors[0].Err
		status, body := translate(err)
		if status >= http.StatusInternalServerError {
			Logger(c, log).Error("request failed", zap.Error(err))
		}
		c.JSON(status, body)
	}
}

func translate(err error) (int, gin.H) {
	var appErr *services.AppError
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &appErr):
		body := gin.H{"code": 0, "mess": appErr.Message}
		if appErr.Details != nil {
			body["details"] = appErr.Details
		}
		return appErr.Status, body
	case errors.As(err, &verrs):
		details := make([]gin.H, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, gin.H{"field": fe.Field(), "rule": fe.Tag()})
		}
		return http.StatusBadRequest, gin.H{"code": 0, "mess": validationMessage(verrs[0]), "details": details}
	case isBindError(err):
		return http.StatusBadRequest, gin.H{"code": 0, "mess": bindMessage(err)}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, gin.H{"code": 0, "mess": "record not found"}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusBadRequest, gin.H{"code": 0, "mess": "record already exists"}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return http.StatusBadRequest, gin.H{"code": 0, "mess": "referenced record does not exist"}
	default:
		return http.StatusInternalServerError, gin.H{"code": 0, "mess": "internal server error"}
	}
}

// isBindError reports decode failures of a request body, query or form.
func isBindError(err error) bool {
	var (
		syntaxErr   *json.SyntaxError
		typeErr     *json.UnmarshalTypeError
		goSyntaxErr *gojson.SyntaxError
		goTypeErr   *gojson.UnmarshalTypeError
		numErr      *strconv.NumError
	)
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, http.ErrNotMultipart) ||
		errors.Is(err, http.ErrMissingBoundary) ||
		errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.As(err, &goSyntaxErr) ||
		errors.As(err, &goTypeErr) ||
		errors.As(err, &numErr)
}

func bindMessage(err error) string {
	var (
		typeErr   *json.UnmarshalTypeError
		goTypeErr *gojson.UnmarshalTypeError
		numErr    *strconv.NumError
	)
	switch {
	case errors.Is(err, io.EOF):
		return "request body is required"
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return typeErr.Field + " must be " + typeErr.Type.String()
	case errors.As(err, &goTypeErr) && goTypeErr.Field != "":
		return goTypeErr.Field + " must be " + goTypeErr.Type.String()
	case errors.As(err, &numErr):
		return "invalid number " + strconv.Quote(numErr.Num)
	default:
		return "malformed request body"
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "min":
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		return fe.Field() + " must be at most " + fe.Param()
	case "oneof":
		return fe.Field() + " must be one of " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}
