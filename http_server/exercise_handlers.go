package http_server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danthegoodman1/tabula/exercises"
	"github.com/danthegoodman1/tabula/utils"
	"github.com/rs/zerolog"
)

type (
	RunReqBody struct {
		// How many rows head() prints.
		//
		// Default 5.
		HeadRows *int `validate:"omitempty,min=1,max=100"`
		// How many seconds before the run will time out.
		//
		// Default `60`.
		MaxRuntimeSec *int64 `validate:"omitempty,min=1,max=600"`
	}
)

func (s *HTTPServer) ListExercises(c *CustomContext) error {
	catalog, err := exercises.GetCatalog()
	if err != nil {
		return c.InternalError(err, "error getting catalog")
	}
	return c.JSON(http.StatusOK, catalog.Exercises)
}

func (s *HTTPServer) RunExercise(c *CustomContext) error {
	name := c.Param("name")

	var reqBody RunReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	catalog, err := exercises.GetCatalog()
	if err != nil {
		return c.InternalError(err, "error getting catalog")
	}
	if _, err := catalog.Get(name); errors.Is(err, exercises.ErrUnknownExercise) {
		return c.String(http.StatusNotFound, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second*time.Duration(utils.Deref(reqBody.MaxRuntimeSec, 60)))
	defer cancel()

	zerolog.Ctx(ctx).Debug().Str("exercise", name).Msg("running exercise handler")

	env := s.env
	env.HeadRows = utils.Deref(reqBody.HeadRows, env.HeadRows)
	res, err := exercises.Run(ctx, name, env)
	if err != nil {
		return c.InternalError(err, "error running exercise")
	}

	return c.JSON(http.StatusOK, res)
}
