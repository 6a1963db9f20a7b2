package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/oscardm22/estuguia/core"
	"github.com/oscardm22/estuguia/core/schedule"
	"github.com/oscardm22/estuguia/core/task"
	"github.com/oscardm22/estuguia/core/user"
)

var (
	errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// authErrorStatus maps a failure category to its HTTP status.
func authErrorStatus(kind core.AuthErrorKind) int {
	switch kind {
	case core.AuthErrInvalidCredentials:
		return http.StatusUnauthorized
	case core.AuthErrEmailExists:
		return http.StatusConflict
	case core.AuthErrWeakPassword, core.AuthErrInvalidEmail:
		return http.StatusBadRequest
	case core.AuthErrUserDisabled:
		return http.StatusForbidden
	case core.AuthErrRateLimited:
		return http.StatusTooManyRequests
	case core.AuthErrNetwork:
		return http.StatusServiceUnavailable
	case core.AuthErrNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func isNotFoundErr(err error) bool {
	switch err {
	case user.ErrNotFound, schedule.ErrNotFound, task.ErrNotFound:
		return true
	}
	return false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
func newAppHTTPErrorHandler(logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translatorFromContext(ctx))
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *core.AuthError:
			code = authErrorStatus(origErr.Kind)
			message = origErr.Message()
			if code == http.StatusInternalServerError {
				logger.Error(origErr.Error(), origErr)
			}
		default:
			if isNotFoundErr(origErr) {
				code = http.StatusNotFound
				message = origErr.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var sess core.Session
			if s, sErr := getContextSession(ctx); sErr == nil {
				sess = s
			}
			logger.Error(msg, errors.Wrap(err, msg), sess)
		}

		if ctx.Echo().Debug {
			message = err.Error()
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

const contextTranslatorKey = "translator"

// translatorMiddleware stashes the translator for the error handler; echo's
// HTTPErrorHandler has no access to server deps otherwise.
func translatorMiddleware(translator ut.Translator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctx.Set(contextTranslatorKey, translator)
			return next(ctx)
		}
	}
}

func translatorFromContext(ctx echo.Context) ut.Translator {
	if translator, ok := ctx.Get(contextTranslatorKey).(ut.Translator); ok {
		return translator
	}
	return nil
}
