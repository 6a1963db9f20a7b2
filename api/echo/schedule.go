package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/oscardm22/estuguia/core"
	"github.com/oscardm22/estuguia/core/schedule"
)

type scheduleApi struct {
	deps ServerDeps
}

func registerScheduleAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := scheduleApi{deps: deps}

	sg := g.Group("/schedules", jwt)
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.GET("/today", api.today)
	sg.GET("/stats", api.stats)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *scheduleApi) create(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	var data schedule.NewSchedule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchedule")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	sch, err := api.deps.ScheduleSvc.Add(ctx.Request().Context(), sess, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sch)
}

// query lists the session user's schedules, optionally filtered by `day`
// and/or `turn` query params.
func (api *scheduleApi) query(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	reqCtx := ctx.Request().Context()

	dayParam := ctx.QueryParam("day")
	turnParam := ctx.QueryParam("turn")

	var schedules []schedule.Schedule
	switch {
	case dayParam != "" && turnParam != "":
		day, err := parseDay(dayParam)
		if err != nil {
			return err
		}
		turn, err := parseTurn(turnParam)
		if err != nil {
			return err
		}
		schedules, err = api.deps.ScheduleSvc.ListByDayAndTurn(reqCtx, sess, day, turn)
		if err != nil {
			return err
		}
	case dayParam != "":
		day, err := parseDay(dayParam)
		if err != nil {
			return err
		}
		schedules, err = api.deps.ScheduleSvc.ListByDay(reqCtx, sess, day)
		if err != nil {
			return err
		}
	case turnParam != "":
		turn, err := parseTurn(turnParam)
		if err != nil {
			return err
		}
		schedules, err = api.deps.ScheduleSvc.ListByTurn(reqCtx, sess, turn)
		if err != nil {
			return err
		}
	default:
		schedules, err = api.deps.ScheduleSvc.List(reqCtx, sess)
		if err != nil {
			return err
		}
	}

	if schedules == nil {
		schedules = []schedule.Schedule{}
	}
	return ctx.JSON(http.StatusOK, schedules)
}

func (api *scheduleApi) today(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	schedules, err := api.deps.ScheduleSvc.Today(ctx.Request().Context(), sess)
	if err != nil {
		return err
	}
	if schedules == nil {
		schedules = []schedule.Schedule{}
	}
	return ctx.JSON(http.StatusOK, schedules)
}

func (api *scheduleApi) stats(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	schedules, err := api.deps.ScheduleSvc.List(ctx.Request().Context(), sess)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, schedule.ComputeStats(schedules))
}

func (api *scheduleApi) retrieve(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	sch, err := api.deps.ScheduleSvc.Get(ctx.Request().Context(), sess, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *scheduleApi) update(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	var data schedule.UpdateSchedule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSchedule")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	sch, err := api.deps.ScheduleSvc.Update(ctx.Request().Context(), sess, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *scheduleApi) destroy(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	if err := api.deps.ScheduleSvc.Delete(ctx.Request().Context(), sess, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func parseDay(param string) (int, error) {
	day, err := strconv.Atoi(param)
	if err != nil || day < 1 || day > 5 {
		return 0, core.NewValidationError(nil, core.FieldError{Field: "day", Error: "debe ser un día entre 1 y 5"})
	}
	return day, nil
}

func parseTurn(param string) (schedule.Turn, error) {
	switch turn := schedule.Turn(param); turn {
	case schedule.TurnMorning, schedule.TurnAfternoon:
		return turn, nil
	}
	return "", core.NewValidationError(nil, core.FieldError{Field: "turn", Error: "debe ser MORNING o AFTERNOON"})
}
